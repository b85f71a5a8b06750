package stories

import (
	"fmt"
	"strings"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/domain/content"
)

type Story struct {
	content.Item
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text" json:"content"`
}

func (Story) TableName() string { return StoryTable }

func (s *Story) Base() *content.Item { return &s.Item }

func (s *Story) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrInvalidArgument)
	}
	if strings.TrimSpace(s.Content) == "" {
		return fmt.Errorf("%w: content is required", apperr.ErrInvalidArgument)
	}
	return nil
}

func (s Story) Summary() content.Summary {
	return content.Summary{ID: s.ID, Title: s.Title, Cover: s.FirstPicture(), OnlineAt: s.OnlineAt}
}

// StoryPatch is a partial update of a story.
type StoryPatch struct {
	content.ItemPatch
	Title   *string
	Content *string
}

func (p StoryPatch) Columns() (map[string]interface{}, error) {
	cols := map[string]interface{}{}
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", apperr.ErrInvalidArgument)
		}
		cols["title"] = *p.Title
	}
	if p.Content != nil {
		if strings.TrimSpace(*p.Content) == "" {
			return nil, fmt.Errorf("%w: content must not be empty", apperr.ErrInvalidArgument)
		}
		cols["content"] = *p.Content
	}
	if err := p.Apply(cols); err != nil {
		return nil, err
	}
	return cols, nil
}
