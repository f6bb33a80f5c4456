package engine

import (
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/zenwatch/zenwatch/metrics"
)

// DecodeFunc turns a raw payload into human-readable text. It is supplied by
// the operator, may be called concurrently, and its failures never abort
// ingest. nil means no decoder is configured.
type DecodeFunc func(topic string, payload []byte, at time.Time) (string, error)

// Ingest is the boundary the pub/sub transport writes through. It never
// blocks on the diff/push side: the only lock it touches is the store's
// short write take.
type Ingest struct {
	store  *Store
	decode DecodeFunc
}

func NewIngest(store *Store, decode DecodeFunc) *Ingest {
	return &Ingest{
		store:  store,
		decode: decode,
	}
}

func (in *Ingest) HasDecoder() bool {
	return in.decode != nil
}

// OnEvent absorbs one pub/sub message. A decoder failure still updates size
// and timestamp; the decoded column falls back to the error text so the
// viewer sees something actionable rather than a stale value.
func (in *Ingest) OnEvent(topic string, payload []byte, at time.Time) {
	rec := Record{
		Name:       topic,
		SizeBytes:  uint64(len(payload)),
		ReceivedAt: at,
	}

	if in.decode != nil {
		text, err := in.safeDecode(topic, payload, at)
		if err != nil {
			slog.Warn("decoder failed", "topic", topic, "error", err)
			metrics.IncDecodeErrors()
			text = "decode error: " + err.Error()
		}
		// Escape before the text leaves the trust boundary; it ends up
		// as innerHTML in the viewer.
		rec.DecodedText = html.EscapeString(text)
	}

	slog.Debug("received data for topic", "topic", topic, "bytes", rec.SizeBytes)
	in.store.Upsert(rec)
	metrics.IncIngestEvents()
}

func (in *Ingest) safeDecode(topic string, payload []byte, at time.Time) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panicked: %v", r)
		}
	}()
	return in.decode(topic, payload, at)
}
