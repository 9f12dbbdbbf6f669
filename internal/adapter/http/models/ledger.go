package models

import "time"

type LedgerBlockView struct {
	Index        int64     `json:"index"`
	Timestamp    time.Time `json:"timestamp"`
	Digests      []string  `json:"digests"`
	Nonce        int64     `json:"nonce"`
	PreviousHash string    `json:"previousHash"`
	Hash         string    `json:"hash"`
}

type ChainResponse struct {
	Chain  []LedgerBlockView `json:"chain"`
	Length int               `json:"length"`
	Valid  bool              `json:"valid"`
}

type VerifyDigestResponse struct {
	Verified   bool       `json:"verified"`
	Pending    bool       `json:"pending,omitempty"`
	BlockIndex *int64     `json:"blockIndex,omitempty"`
	BlockHash  string     `json:"blockHash,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

type MineBlockResponse struct {
	Mined bool             `json:"mined"`
	Block *LedgerBlockView `json:"block,omitempty"`
}
