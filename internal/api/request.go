package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/openbuilders/campaign-api/internal/errors"
)

const maxBodySize = 8 << 20

// bindRequest fills dst from a JSON or form body. Every value is converted to
// text first, so numbers and booleans are accepted in both encodings.
func bindRequest(r *http.Request, dst interface{}) (map[string]string, error) {
	values, err := requestValues(r)
	if err != nil {
		return nil, apperrors.ServiceError{
			Kind:    apperrors.KindInvalidRequest,
			Err:     err,
			Details: map[string][]string{"request": {"The request body is not valid."}},
		}
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUndefined, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUndefined, err)
	}

	return values, nil
}

func requestValues(r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		defer r.Body.Close()

		if len(body) == 0 {
			return map[string]string{}, nil
		}

		var fields map[string]interface{}
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}

		values := make(map[string]string, len(fields))
		for key, value := range fields {
			values[key] = stringify(value)
		}
		return values, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	values := make(map[string]string, len(r.Form))
	for key := range r.Form {
		values[key] = r.Form.Get(key)
	}
	return values, nil
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []interface{}:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = stringify(item)
		}
		return strings.Join(items, ",")
	}

	return fmt.Sprint(value)
}
