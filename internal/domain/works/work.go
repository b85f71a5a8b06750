package works

import (
	"encoding/json"
	"fmt"
	"strings"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/domain/content"
)

// Work is a portfolio item. Tags and pictures are stored as JSON text.
type Work struct {
	content.Item
	Name        string   `gorm:"not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Tags        []string `gorm:"type:text;serializer:json" json:"tags"`
}

func (Work) TableName() string { return WorkTable }

func (w *Work) Base() *content.Item { return &w.Item }

func (w *Work) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrInvalidArgument)
	}
	return nil
}

func (w Work) Summary() content.Summary {
	return content.Summary{ID: w.ID, Title: w.Name, Cover: w.FirstPicture(), OnlineAt: w.OnlineAt}
}

// TagPattern is the LIKE pattern (escape character '\') matching tag inside the
// serialized tags column. encoding/json is used because that is what gorm's json
// serializer writes.
func TagPattern(tag string) string {
	quoted, _ := json.Marshal(tag)
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(string(quoted)) + "%"
}

// WorkPatch is a partial update of a work.
type WorkPatch struct {
	content.ItemPatch
	Name        *string
	Description *string
	Tags        *[]string
}

func (p WorkPatch) Columns() (map[string]interface{}, error) {
	cols := map[string]interface{}{}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be empty", apperr.ErrInvalidArgument)
		}
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Tags != nil {
		tags, err := content.JSONText(*p.Tags)
		if err != nil {
			return nil, err
		}
		cols["tags"] = tags
	}
	if err := p.Apply(cols); err != nil {
		return nil, err
	}
	return cols, nil
}
