package output

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

func newTestMailSink(sent *[]*gomail.Msg, sendErr error) *MailSink {
	ms := NewMailSink(MailConfig{
		Host:      "smtp.example.com",
		Port:      587,
		FromName:  "Iris",
		FromEmail: "iris@example.com",
		To:        []string{"ops@example.com"},
	}, slog.Default())
	ms.send = func(_ context.Context, msg *gomail.Msg) error {
		*sent = append(*sent, msg)
		return sendErr
	}

	return ms
}

func TestMailSink_Flush(t *testing.T) {
	ctx := t.Context()
	addresses := []models.Address{{Zip5: "75287", City: "Dallas", Line1: "18788 Marsh Ln"}}

	t.Run("cycle batches are ignored", func(t *testing.T) {
		var sent []*gomail.Msg
		sink := newTestMailSink(&sent, nil)

		require.NoError(t, sink.Flush(ctx, Batch{RunID: "run-1", Addresses: addresses}))
		assert.Empty(t, sent)
	})

	t.Run("final batch is mailed", func(t *testing.T) {
		var sent []*gomail.Msg
		sink := newTestMailSink(&sent, nil)

		require.NoError(t, sink.Flush(ctx, Batch{RunID: "run-1", Addresses: addresses, Final: true}))
		require.Len(t, sent, 1)

		assert.Equal(t, []string{"Sweep run-1: 1 submitted addresses"}, sent[0].GetGenHeader(gomail.HeaderSubject))
		recipients, err := sent[0].GetRecipients()
		require.NoError(t, err)
		assert.Equal(t, []string{"<ops@example.com>"}, recipients)

		var buf bytes.Buffer
		_, err = sent[0].WriteTo(&buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "18788 Marsh Ln")
	})

	t.Run("empty final batch still reports", func(t *testing.T) {
		var sent []*gomail.Msg
		sink := newTestMailSink(&sent, nil)

		require.NoError(t, sink.Flush(ctx, Batch{RunID: "run-2", Final: true}))
		require.Len(t, sent, 1)

		var buf bytes.Buffer
		_, err := sent[0].WriteTo(&buf)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "No addresses were submitted")
	})

	t.Run("send error", func(t *testing.T) {
		var sent []*gomail.Msg
		sink := newTestMailSink(&sent, assert.AnError)

		err := sink.Flush(ctx, Batch{RunID: "run-3", Final: true})

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to mail addresses")
	})

	t.Run("invalid sender", func(t *testing.T) {
		sink := NewMailSink(MailConfig{FromEmail: "not an email", To: []string{"ops@example.com"}}, slog.Default())

		err := sink.Flush(ctx, Batch{Final: true})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp from")
	})
}
