package records

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// decodeCollection decodes a JSON array element by element. Elements that fail
// to decode are skipped with a warning, so a single bad record does not hide the rest.
// An absent document decodes to an empty collection.
func decodeCollection[T any](collection string, raw json.RawMessage) (items []T, skipped int, err error) {
	if raw == nil {
		return []T{}, 0, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, 0, fmt.Errorf("collection [%s] is not a json array: %w", collection, err)
	}

	items = make([]T, 0, len(elements))
	for i, el := range elements {
		var item T
		if err := json.Unmarshal(el, &item); err != nil {
			log.WithFields(log.Fields{
				"collection": collection,
				"index":      i,
			}).Warnf("skipping undecodable record: %s", err)
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}
