package gm

import "encoding/hex"

var (
	sanityCheckPrefix = []byte("gm/sanity/")
	tokenLimitPrefix  = []byte("gm/limit/")
	userRecordPrefix  = []byte("gm/user/")
	attestationPrefix = []byte("gm/attestation/")
	managerStateKey   = []byte("gm/manager")
	stableStateKey    = []byte("gm/stable")
)

func sanityCheckKey(asset Address) []byte {
	return appendHex(sanityCheckPrefix, asset[:])
}

func tokenLimitKey(asset Address) []byte {
	return appendHex(tokenLimitPrefix, asset[:])
}

func userRecordKey(owner, asset Address) []byte {
	key := appendHex(userRecordPrefix, owner[:])
	key = append(key, '/')
	return appendHex(key, asset[:])
}

func attestationKey(id AttestationID) []byte {
	return appendHex(attestationPrefix, id[:])
}

func appendHex(prefix []byte, raw []byte) []byte {
	suffix := hex.EncodeToString(raw)
	key := make([]byte, 0, len(prefix)+len(suffix))
	key = append(key, prefix...)
	key = append(key, suffix...)
	return key
}
