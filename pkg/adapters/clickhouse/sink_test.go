package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodcast/goodapi/pkg/domain"
)

type fakeBatch struct {
	driver.Batch
	rows    []any
	sent    bool
	aborted bool
	sendErr error
}

func (b *fakeBatch) AppendStruct(v any) error {
	b.rows = append(b.rows, v)
	return nil
}

func (b *fakeBatch) Send() error {
	b.sent = true
	return b.sendErr
}

func (b *fakeBatch) Abort() error {
	b.aborted = true
	return nil
}

type fakeConn struct {
	queries []string
	batch   *fakeBatch
}

func (c *fakeConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	c.queries = append(c.queries, query)
	return c.batch, nil
}

func (c *fakeConn) Exec(ctx context.Context, query string, args ...any) error {
	c.queries = append(c.queries, query)
	return nil
}

func (c *fakeConn) Ping(ctx context.Context) error { return nil }

func (c *fakeConn) Close() error { return nil }

func TestSink_Insert(t *testing.T) {
	c := &fakeConn{batch: &fakeBatch{}}
	sink := newSink(c)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id, err := sink.Insert(context.Background(), &domain.Event{
		Name:       "Pageview",
		Created:    created,
		Actor:      domain.Nullable("0x01"),
		Properties: map[string]any{"page": "home"},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "query id is a uuid")

	assert.Equal(t, []string{"INSERT INTO events"}, c.queries)
	assert.True(t, c.batch.sent)
	require.Len(t, c.batch.rows, 1)

	r := c.batch.rows[0].(*row)
	assert.Equal(t, "Pageview", r.Name)
	assert.Equal(t, "0x01", *r.Actor)
	assert.Equal(t, `{"page":"home"}`, *r.Properties)
	assert.Equal(t, created, r.Created)
	assert.Nil(t, r.City)
}

func TestSink_InsertSendError(t *testing.T) {
	c := &fakeConn{batch: &fakeBatch{sendErr: errors.New("connection reset")}}
	sink := newSink(c, WithTable("events_test"))

	_, err := sink.Insert(context.Background(), &domain.Event{Name: "Signup"})
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, []string{"INSERT INTO events_test"}, c.queries)
}

func TestSink_EnsureTable(t *testing.T) {
	c := &fakeConn{}
	sink := newSink(c, WithTable("events_test"))

	require.NoError(t, sink.EnsureTable(context.Background()))
	require.Len(t, c.queries, 1)
	assert.Contains(t, c.queries[0], "CREATE TABLE IF NOT EXISTS events_test")
}

func TestToRow_NullProperties(t *testing.T) {
	r, err := toRow(&domain.Event{Name: "Signup"})
	require.NoError(t, err)
	assert.Nil(t, r.Properties)
	assert.False(t, r.Created.IsZero())
}
