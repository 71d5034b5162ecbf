package gm

import (
	"bytes"
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Quote is the signed payload binding a price attestation to a single trade.
// Side distinguishes mint from redeem so a signature cannot be replayed on
// the opposite flow.
type Quote struct {
	ChainID       [32]byte
	AttestationID AttestationID
	Side          byte
	User          Address
	Asset         Address
	Price         uint64
	Amount        uint64
	Expiration    uint64
}

// Message renders the canonical 137-byte signing payload: chain id,
// attestation id, side marker, user, asset, then price, amount and
// expiration as big-endian 64-bit words.
func (q *Quote) Message() []byte {
	buf := make([]byte, 0, 137)
	buf = append(buf, q.ChainID[:]...)
	buf = append(buf, q.AttestationID[:]...)
	buf = append(buf, q.Side)
	buf = append(buf, q.User[:]...)
	buf = append(buf, q.Asset[:]...)
	buf = binary.BigEndian.AppendUint64(buf, q.Price)
	buf = binary.BigEndian.AppendUint64(buf, q.Amount)
	buf = binary.BigEndian.AppendUint64(buf, q.Expiration)
	return buf
}

// Hash returns the keccak256 digest of the canonical payload.
func (q *Quote) Hash() [32]byte {
	var digest [32]byte
	copy(digest[:], ethcrypto.Keccak256(q.Message()))
	return digest
}

// SecpVerification is the outcome of recovering a secp256k1 signature over a
// quote digest.
type SecpVerification struct {
	Count   int
	Digest  []byte
	Address [20]byte
}

// RecoverSignature recovers the signer of a 65-byte [R || S || V] signature
// over the given digest.
func RecoverSignature(digest [32]byte, signature []byte) (*SecpVerification, error) {
	if len(signature) != 65 {
		return nil, ErrSignatureMalformed
	}
	pub, err := ethcrypto.SigToPub(digest[:], signature)
	if err != nil {
		return nil, ErrSignatureInvalid
	}
	verification := &SecpVerification{
		Count:   1,
		Digest:  append([]byte(nil), digest[:]...),
		Address: ethcrypto.PubkeyToAddress(*pub),
	}
	return verification, nil
}

// Matches confirms the verification covers exactly the expected digest and
// was produced by the trusted signer. Each failure mode reports distinctly.
func (v *SecpVerification) Matches(digest [32]byte, signer [20]byte) error {
	if v == nil {
		return ErrMissingVerification
	}
	if v.Count != 1 {
		return ErrWrongSignatureCount
	}
	if len(v.Digest) != 32 {
		return ErrDigestLength
	}
	if !bytes.Equal(v.Digest, digest[:]) {
		return ErrDigestMismatch
	}
	if v.Address != signer {
		return ErrSignerMismatch
	}
	return nil
}

// Attestations manages the replay-guard records keyed by attestation id.
type Attestations struct {
	state *State
}

// NewAttestations binds the registry to the given record store.
func NewAttestations(state *State) *Attestations {
	return &Attestations{state: state}
}

// Consume records an attestation id as used. A second consumption of the
// same id fails, which is what prevents signed quotes from being replayed.
func (a *Attestations) Consume(id AttestationID, creator Address, now int64) error {
	_, exists, err := a.state.Attestation(id)
	if err != nil {
		return err
	}
	if exists {
		return ErrAttestationAlreadyUsed
	}
	record := &AttestationRecord{ID: id, Creator: creator, CreatedAt: now}
	return a.state.PutAttestation(record)
}

// Close removes a consumed record once it is strictly older than the
// attestation validity window. Only the creator may reclaim it.
func (a *Attestations) Close(id AttestationID, caller Address, now int64) error {
	record, exists, err := a.state.Attestation(id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAttestationNotFound
	}
	if record.Creator != caller {
		return ErrAttestationCreatorMismatch
	}
	if now <= record.CreatedAt+MaxAttestationWindow {
		return ErrAttestationTooNew
	}
	return a.state.DeleteAttestation(id)
}

// CloseBatch removes a set of records atomically: every record must exist,
// belong to the caller, and be old enough, or none are deleted.
func (a *Attestations) CloseBatch(ids []AttestationID, caller Address, now int64) error {
	for _, id := range ids {
		record, exists, err := a.state.Attestation(id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrAttestationNotFound
		}
		if record.Creator != caller {
			return ErrAttestationCreatorMismatch
		}
		if now <= record.CreatedAt+MaxAttestationWindow {
			return ErrAttestationTooNew
		}
	}
	for _, id := range ids {
		if err := a.state.DeleteAttestation(id); err != nil {
			return err
		}
	}
	return nil
}
