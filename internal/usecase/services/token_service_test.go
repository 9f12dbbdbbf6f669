package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/securebank/payment-core/internal/adapter/http/models"
	"github.com/securebank/payment-core/internal/adapter/repository/memory"
	"github.com/securebank/payment-core/internal/domain"
)

const testSecret = "unit-test-qr-secret"

func testPayload(expiresAt time.Time) TokenPayload {
	return TokenPayload{
		PaymentID:     "pay-123",
		ReceiverID:    "acc-1",
		ReceiverAlias: "merchant@securebank",
		Amount:        "250",
		Description:   "Coffee",
		Timestamp:     expiresAt.Add(-5 * time.Minute).Format(time.RFC3339Nano),
		ExpiresAt:     expiresAt.Format(time.RFC3339Nano),
		Nonce:         "deadbeefdeadbeef",
	}
}

func TestTokenCodecRoundTrip(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	now := time.Now().UTC()
	payload := testPayload(now.Add(5 * time.Minute))

	artifact, shortHash, err := codec.Encode(payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if shortHash == "" || len(shortHash) != artifactHashLength {
		t.Errorf("unexpected short hash %q", shortHash)
	}

	decoded, err := codec.Decode(artifact, now)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.PaymentID != payload.PaymentID || decoded.ReceiverID != payload.ReceiverID || decoded.Amount != payload.Amount {
		t.Errorf("decoded payload mismatch: %+v", decoded)
	}
	if decoded.Signature == "" {
		t.Error("expected decoded payload to carry its signature")
	}
}

func TestTokenCodecRejectsTamperedCiphertext(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	now := time.Now().UTC()

	artifact, _, err := codec.Encode(testPayload(now.Add(5 * time.Minute)))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(artifact)
	var envelope artifactEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	// Flip a ciphertext character without updating the integrity digest.
	data := []byte(envelope.Data)
	if data[10] == 'A' {
		data[10] = 'B'
	} else {
		data[10] = 'A'
	}
	envelope.Data = string(data)
	tampered, _ := json.Marshal(envelope)

	_, err = codec.Decode(base64.StdEncoding.EncodeToString(tampered), now)
	if !errors.Is(err, domain.ErrTokenIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}

	// Updating the digest to match only moves the failure to decryption
	// or the signature; it never yields a valid token.
	envelope.Hash = ciphertextDigest(envelope.Data)
	tampered, _ = json.Marshal(envelope)
	_, err = codec.Decode(base64.StdEncoding.EncodeToString(tampered), now)
	if !errors.Is(err, domain.ErrTokenIntegrity) {
		t.Fatalf("expected integrity error after digest fixup, got %v", err)
	}
}

func TestTokenCodecRejectsWrongKey(t *testing.T) {
	now := time.Now().UTC()
	artifact, _, err := NewTokenCodec(testSecret).Encode(testPayload(now.Add(5 * time.Minute)))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = NewTokenCodec("a-different-secret").Decode(artifact, now)
	if !errors.Is(err, domain.ErrTokenIntegrity) {
		t.Fatalf("expected integrity error with wrong key, got %v", err)
	}
}

func TestTokenCodecRejectsGarbageArtifacts(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	now := time.Now().UTC()

	for _, artifact := range []string{"", "not base64!!", base64.StdEncoding.EncodeToString([]byte("not json")), base64.StdEncoding.EncodeToString([]byte(`{"type":"something_else"}`))} {
		if _, err := codec.Decode(artifact, now); !errors.Is(err, domain.ErrTokenIntegrity) {
			t.Errorf("expected integrity error for %q, got %v", artifact, err)
		}
	}
}

func TestTokenCodecRejectsExpiredPayload(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	now := time.Now().UTC()

	artifact, _, err := codec.Encode(testPayload(now.Add(5 * time.Minute)))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = codec.Decode(artifact, now.Add(6*time.Minute))
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func newTestTokenService(t *testing.T) (*TokenServiceImpl, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	if _, err := accounts.Create(context.Background(), domain.Account{
		ID:        "acc-merchant",
		UserID:    "merchant",
		Alias:     "merchant@securebank",
		Balance:   decimal.NewFromInt(1000),
		Currency:  "USD",
		IsPrimary: true,
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	svc := NewTokenService(NewTokenCodec(testSecret), memory.NewTokenRepository(store), accounts, 5)
	return svc, store
}

func TestTokenServiceGenerateAndVerify(t *testing.T) {
	svc, _ := newTestTokenService(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(250)

	generated, err := svc.Generate(ctx, models.GenerateTokenRequest{
		CreatorUserID: "merchant",
		Amount:        &amount,
		Description:   "Coffee",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !generated.Success || generated.Data == nil {
		t.Fatalf("expected successful generation, got %+v", generated)
	}
	if generated.Data.Artifact == "" || generated.Data.PaymentID == "" {
		t.Fatal("expected artifact and payment id")
	}

	verified, err := svc.Verify(ctx, models.VerifyTokenRequest{Artifact: generated.Data.Artifact})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.Data == nil || !verified.Data.Valid {
		t.Fatalf("expected valid verification, got %+v", verified)
	}
	if verified.Data.ReceiverID != "acc-merchant" {
		t.Errorf("expected receiver account acc-merchant, got %s", verified.Data.ReceiverID)
	}
	if verified.Data.Amount == nil || !verified.Data.Amount.Equal(amount) {
		t.Errorf("expected amount %s, got %v", amount, verified.Data.Amount)
	}
}

func TestTokenServiceVerifyExpiredFlipsStoredStatus(t *testing.T) {
	svc, _ := newTestTokenService(t)
	ctx := context.Background()

	generated, err := svc.Generate(ctx, models.GenerateTokenRequest{CreatorUserID: "merchant", Description: "Open amount"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }

	verified, err := svc.Verify(ctx, models.VerifyTokenRequest{Artifact: generated.Data.Artifact})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.Data == nil || verified.Data.Valid {
		t.Fatalf("expected invalid verification, got %+v", verified)
	}
	if verified.Data.Error != "payment code has expired" {
		t.Errorf("unexpected error %q", verified.Data.Error)
	}

	stored, err := svc.tokens.GetByID(ctx, generated.Data.PaymentID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.TokenStatusExpired {
		t.Errorf("expected stored token expired, got %s", stored.Status)
	}
}

func TestTokenServiceResolveRejectsTerminalStatuses(t *testing.T) {
	svc, _ := newTestTokenService(t)
	ctx := context.Background()

	generated, err := svc.Generate(ctx, models.GenerateTokenRequest{CreatorUserID: "merchant", Description: "Coffee"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	token, err := svc.Resolve(ctx, generated.Data.Artifact)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if token.ID != generated.Data.PaymentID {
		t.Errorf("resolved wrong token: %s", token.ID)
	}

	if _, err := svc.Cancel(ctx, token.ID, "merchant"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := svc.Resolve(ctx, generated.Data.Artifact); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected cancelled token to resolve as expired, got %v", err)
	}
}

func TestTokenServiceListForCreator(t *testing.T) {
	svc, _ := newTestTokenService(t)
	ctx := context.Background()

	for range 3 {
		if _, err := svc.Generate(ctx, models.GenerateTokenRequest{CreatorUserID: "merchant", Description: "x"}); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}

	listed, err := svc.ListForCreator(ctx, "merchant")
	if err != nil {
		t.Fatalf("ListForCreator: %v", err)
	}
	if listed.Data == nil || len(listed.Data.Tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %+v", listed)
	}
}
