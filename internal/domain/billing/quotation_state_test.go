package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framasa/internal/core/apperror"
	"framasa/internal/core/id"
)

func TestQuotationStateMachine(t *testing.T) {
	now := time.Now().UTC()

	q := NewQuotation(id.New())
	require.Equal(t, QuoteDraft, q.Status)

	require.NoError(t, q.MarkSent(now))
	assert.Equal(t, QuoteSent, q.Status)
	require.NotNil(t, q.SentAt)

	// Sending twice is invalid.
	err := q.MarkSent(now)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidStateTransition))

	require.NoError(t, q.MarkAccepted(now))
	assert.Equal(t, QuoteAccepted, q.Status)
	assert.NoError(t, q.CanConvert())

	// Accepting twice is invalid.
	assert.Error(t, q.MarkAccepted(now))

	// An accepted but unconverted quote can still be rejected.
	require.NoError(t, q.MarkRejected(now))
	assert.Equal(t, QuoteRejected, q.Status)
}

func TestQuotationDecisionFromDraft(t *testing.T) {
	now := time.Now().UTC()

	// Walk-in clients decide on the spot; no SENT step required.
	q := NewQuotation(id.New())
	require.NoError(t, q.MarkAccepted(now))
	assert.Equal(t, QuoteAccepted, q.Status)
	require.NotNil(t, q.DecidedAt)

	q2 := NewQuotation(id.New())
	require.NoError(t, q2.MarkRejected(now))
	assert.Equal(t, QuoteRejected, q2.Status)
}

func TestQuotationRejection(t *testing.T) {
	now := time.Now().UTC()
	q := NewQuotation(id.New())
	require.NoError(t, q.MarkSent(now))
	require.NoError(t, q.MarkRejected(now))
	assert.Equal(t, QuoteRejected, q.Status)

	// Rejecting twice is invalid.
	err := q.MarkRejected(now)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidStateTransition))

	// A rejected client can change their mind while the quote is valid.
	require.NoError(t, q.MarkAccepted(now))
	assert.Equal(t, QuoteAccepted, q.Status)

	q.Status = QuoteRejected
	err = q.CanConvert()
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidStateTransition))
}

func TestQuotationRejectBlockedOnceConverted(t *testing.T) {
	now := time.Now().UTC()
	q := NewQuotation(id.New())
	q.Status = QuoteAccepted
	invID := id.New()
	q.InvoiceID = &invID

	err := q.MarkRejected(now)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
	assert.Equal(t, QuoteAccepted, q.Status)
}

func TestQuotationAutoExpire(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	q := NewQuotation(id.New())
	q.ValidUntil = &past
	require.NoError(t, q.MarkSent(now.Add(-2*time.Hour)))

	err := q.MarkAccepted(now)
	require.Error(t, err)
	assert.Equal(t, QuoteExpired, q.Status)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidStateTransition))

	// Decided quotes never expire retroactively.
	q2 := NewQuotation(id.New())
	q2.ValidUntil = &past
	q2.Status = QuoteAccepted
	assert.False(t, q2.IsExpired(now))
}

func TestQuotationConvertGuards(t *testing.T) {
	q := NewQuotation(id.New())
	q.Status = QuoteAccepted

	invID := id.New()
	q.InvoiceID = &invID
	err := q.CanConvert()
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
}
