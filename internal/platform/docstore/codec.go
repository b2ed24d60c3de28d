package docstore

import (
	"crypto/rand"
	"fmt"
	"reflect"
	"regexp"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	ulid "github.com/oklog/ulid/v2"
)

// memory / SQL バックエンド共通の JSON コーデック
var codec = jsoniter.ConfigCompatibleWithStandardLibrary

func encodeDoc(doc any) ([]byte, error) {
	raw, err := codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	return raw, nil
}

func decodeDoc[D Document](key string, raw []byte) (D, error) {
	var d D
	if err := codec.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("docstore: decode: %w", err)
	}
	d.SetDocKey(key)
	return d, nil
}

func decodeFields(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := codec.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("docstore: decode fields: %w", err)
	}
	return m, nil
}

// normalize brings a Go value into the shape it has after a JSON round trip
// (numbers become float64), so filter values compare equal to stored fields.
func normalize(v any) (any, error) {
	raw, err := codec.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := codec.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// splitFilter separates the key condition from the field conditions.
func splitFilter(f Filter) (key string, hasKey bool, fields map[string]any) {
	fields = make(map[string]any, len(f))
	for k, v := range f {
		if k == KeyField {
			key, hasKey = fmt.Sprint(v), true
			continue
		}
		fields[k] = v
	}
	return key, hasKey, fields
}

func matches(docKey string, doc map[string]any, f Filter) (bool, error) {
	key, hasKey, fields := splitFilter(f)
	if hasKey && key != docKey {
		return false, nil
	}
	for k, want := range fields {
		nw, err := normalize(want)
		if err != nil {
			return false, err
		}
		if !reflect.DeepEqual(doc[k], nw) {
			return false, nil
		}
	}
	return true, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func checkIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("docstore: invalid identifier %q", name)
	}
	return nil
}
