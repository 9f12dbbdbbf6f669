package domain

import "time"

// LedgerBlock is an append-only block committing a batch of transaction
// digests. For every block i > 0, PreviousHash equals the hash of block i-1
// and the nonce satisfies the chain's admission predicate against the
// previous block's nonce.
type LedgerBlock struct {
	Index        int64
	Timestamp    time.Time
	Digests      []string
	Nonce        int64
	PreviousHash string
	Hash         string
}

// PendingDigest is a transaction digest waiting to be committed to a block.
type PendingDigest struct {
	Digest    string
	Timestamp time.Time
}

// DigestVerification reports where a digest was found, if anywhere.
type DigestVerification struct {
	Found      bool
	Pending    bool
	BlockIndex int64
	BlockHash  string
	Timestamp  time.Time
}
