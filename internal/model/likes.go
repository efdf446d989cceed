package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Likes is the set of liker ids, persisted as a JSON array column.
type Likes []string

// Contains reports whether id is in the set.
func (l Likes) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of likers.
func (l Likes) Len() int {
	return len(l)
}

// Add inserts id and reports whether the set changed.
func (l *Likes) Add(id string) bool {
	if l.Contains(id) {
		return false
	}
	*l = append(*l, id)
	return true
}

// Remove deletes id and reports whether the set changed.
func (l *Likes) Remove(id string) bool {
	for i, v := range *l {
		if v == id {
			*l = append((*l)[:i:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (l Likes) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("marshal likes: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *Likes) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = Likes{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan likes: unsupported type %T", src)
	}
	if len(data) == 0 {
		*l = Likes{}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("unmarshal likes: %w", err)
	}
	*l = Likes(ids)
	return nil
}
