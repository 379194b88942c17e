package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cafebook/internal/infra"
	"cafebook/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

type handlerFunc func(ctx context.Context, payload json.RawMessage) error

func (f handlerFunc) Process(ctx context.Context, payload json.RawMessage) error {
	return f(ctx, payload)
}

func popJob(t *testing.T, rdb *redis.Client, queue string) (string, Job) {
	t.Helper()
	raw, err := rdb.RPop(context.Background(), queue).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	return raw, job
}

func TestDispatcher_EnqueueEmail(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	d := NewDispatcher(rdb)

	require.NoError(t, d.EnqueueEmail(ctx, EmailJobPayload{ToEmail: "a@b.vn", Subject: "OTP"}))

	_, job := popJob(t, rdb, QueueEmail)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "email", job.Type)
	assert.Equal(t, QueueEmail, job.Queue)
	assert.Zero(t, job.Attempts)

	var p EmailJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, "a@b.vn", p.ToEmail)
}

func TestProcessJob_RetryThenDLQ(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	d := NewDispatcher(rdb)
	calls := 0
	handlers := map[string]Handler{
		QueueEmail: handlerFunc(func(context.Context, json.RawMessage) error {
			calls++
			return errors.New("smtp down")
		}),
	}
	require.NoError(t, d.EnqueueEmail(ctx, EmailJobPayload{ToEmail: "a@b.vn"}))
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for attempt := 1; attempt < MaxAttempts; attempt++ {
		raw, _ := popJob(t, rdb, QueueEmail)
		processJob(ctx, rdb, handlers, QueueEmail, raw, now)

		// Not due yet.
		moved, err := promoteDueRetries(ctx, rdb, now)
		require.NoError(t, err)
		assert.Zero(t, moved)

		now = now.Add(retryBackoff(attempt))
		moved, err = promoteDueRetries(ctx, rdb, now)
		require.NoError(t, err)
		assert.Equal(t, 1, moved)
	}

	raw, job := popJob(t, rdb, QueueEmail)
	assert.Equal(t, MaxAttempts-1, job.Attempts)
	processJob(ctx, rdb, handlers, QueueEmail, raw, now)

	assert.Equal(t, MaxAttempts, calls)
	n, err := DLQLength(ctx, rdb, QueueEmail)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 0, rdb.ZCard(ctx, RetrySet).Val())
}

func TestProcessJob_PermanentGoesStraightToDLQ(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	handlers := map[string]Handler{
		QueueReceipt: handlerFunc(func(context.Context, json.RawMessage) error {
			return Permanent(errors.New("invoice gone"))
		}),
	}
	require.NoError(t, NewDispatcher(rdb).EnqueueReceipt(ctx, ReceiptJobPayload{InvoiceID: 9}))

	raw, _ := popJob(t, rdb, QueueReceipt)
	processJob(ctx, rdb, handlers, QueueReceipt, raw, time.Now())

	entry, err := rdb.RPop(ctx, DLQPrefix+QueueReceipt).Result()
	require.NoError(t, err)
	var dlq DLQEntry
	require.NoError(t, json.Unmarshal([]byte(entry), &dlq))
	assert.Equal(t, "invoice gone", dlq.Reason)
	assert.Equal(t, 1, dlq.Attempts)
	assert.EqualValues(t, 0, rdb.ZCard(ctx, RetrySet).Val())
}

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, 10*time.Second, retryBackoff(1))
	assert.Equal(t, 20*time.Second, retryBackoff(2))
	assert.Equal(t, 40*time.Second, retryBackoff(3))
}

type fakeSender struct {
	sent []infra.Message
	err  error
}

func (f *fakeSender) Send(msg infra.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestEmailWorker(t *testing.T) {
	sender := &fakeSender{}
	w := NewEmailWorker(sender, infra.NewBreaker(infra.BreakerConfig{Name: "smtp"}))

	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "khach@cafebook.vn", Subject: "Mã OTP", Body: "123456"})
	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "khach@cafebook.vn", sender.sent[0].To)

	err := w.Process(context.Background(), json.RawMessage(`{"to_email":""}`))
	assert.True(t, isPermanent(err))

	err = w.Process(context.Background(), json.RawMessage(`not json`))
	assert.True(t, isPermanent(err))
}

func TestEmailWorker_BreakerOpens(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp: refused")}
	w := NewEmailWorker(sender, infra.NewBreaker(infra.BreakerConfig{Name: "smtp", FailureThreshold: 2}))
	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "khach@cafebook.vn"})

	for i := 0; i < 2; i++ {
		err := w.Process(context.Background(), raw)
		require.Error(t, err)
		assert.False(t, isPermanent(err))
	}
	err := w.Process(context.Background(), raw)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
}

type fakeInvoices map[uint]*model.Invoice

func (f fakeInvoices) FindByID(_ context.Context, id uint) (*model.Invoice, error) {
	inv, ok := f[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

type captureEmails struct{ jobs []EmailJobPayload }

func (c *captureEmails) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	c.jobs = append(c.jobs, p)
	return nil
}

func TestReceiptWorker(t *testing.T) {
	inv := &model.Invoice{
		ID:        12,
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Lines: []model.InvoiceLine{
			{InvoiceID: 12, LineNo: 1, Quantity: 2, Product: model.Product{Name: "Cà phê sữa", Price: decimal.NewFromInt(25000)}},
		},
	}
	emails := &captureEmails{}
	w := NewReceiptWorker(fakeInvoices{12: inv}, emails, t.TempDir())

	raw, _ := json.Marshal(ReceiptJobPayload{InvoiceID: 12, ToEmail: "khach@cafebook.vn"})
	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, emails.jobs, 1)
	assert.Equal(t, "khach@cafebook.vn", emails.jobs[0].ToEmail)
	assert.FileExists(t, emails.jobs[0].Attachment)
	assert.Contains(t, emails.jobs[0].Body, "50000")

	raw, _ = json.Marshal(ReceiptJobPayload{InvoiceID: 99, ToEmail: "khach@cafebook.vn"})
	assert.True(t, isPermanent(w.Process(context.Background(), raw)))
}
