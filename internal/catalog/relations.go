package catalog

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/domain/content"
	"lorekeeper/internal/domain/stories"
	"lorekeeper/internal/platform/dbctx"
	"lorekeeper/internal/platform/logger"
	"lorekeeper/internal/store"
)

type storyReader interface {
	Summaries(dbc dbctx.Context, ids []uint) (map[uint]content.Summary, error)
	Visible(dbc dbctx.Context, id uint, view View) (*stories.Story, error)
}

// RelationView is one cross-reference seen from the story it was listed for.
type RelationView struct {
	stories.ResolvedRelation
	Related content.Summary `json:"related"`
}

// Relations stores the typed links between stories. Only one direction of a
// prequel/sequel pair needs to be stored; the other is derived when listing.
type Relations struct {
	db      *gorm.DB
	log     *logger.Logger
	rows    *store.Repository[stories.StoryRelation]
	stories storyReader
}

func NewRelations(db *gorm.DB, baseLog *logger.Logger, s storyReader) *Relations {
	return &Relations{
		db:      db,
		log:     baseLog.With("service", "Relations"),
		rows:    store.New[stories.StoryRelation](db, baseLog, "story relation"),
		stories: s,
	}
}

// NormalizeRelationType trims and lower-cases a relation type.
func NormalizeRelationType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Add stores storyID -> relatedID with the given type. The same (story, related, type)
// triple may only exist once.
func (s *Relations) Add(dbc dbctx.Context, storyID, relatedID uint, relationType, note string) (*stories.StoryRelation, error) {
	relationType = NormalizeRelationType(relationType)
	switch {
	case relationType == "":
		return nil, fmt.Errorf("%w: relation type is required", apperr.ErrInvalidArgument)
	case len(relationType) > 32:
		return nil, fmt.Errorf("%w: relation type is too long", apperr.ErrInvalidArgument)
	case storyID == relatedID:
		return nil, fmt.Errorf("%w: a story cannot relate to itself", apperr.ErrInvalidArgument)
	}

	rec := &stories.StoryRelation{
		StoryID:      storyID,
		RelatedID:    relatedID,
		RelationType: relationType,
		Note:         note,
	}
	err := dbc.Transact(s.db, func(tx dbctx.Context) error {
		conn := tx.Conn(s.db)
		for _, id := range []uint{storyID, relatedID} {
			if err := store.RequireLive(conn, stories.StoryTable, id, "story"); err != nil {
				return err
			}
		}
		var n int64
		if err := s.rows.Active(tx).
			Where("story_id = ? AND related_id = ? AND relation_type = ?", storyID, relatedID, relationType).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: story %d already has a %s relation to %d", apperr.ErrConflict, storyID, relationType, relatedID)
		}
		return s.rows.Create(tx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Relations) Remove(dbc dbctx.Context, id uint) error {
	return s.rows.SoftDelete(dbc, id)
}

// List returns every relation of storyID: its stored edges plus the inverse of edges
// that point at it. Entries whose other story is gone or hidden by view are left out.
func (s *Relations) List(dbc dbctx.Context, storyID uint, view View) ([]RelationView, error) {
	if _, err := s.stories.Visible(dbc, storyID, view); err != nil {
		return nil, err
	}

	var forward, reverse []stories.StoryRelation
	if err := s.rows.Active(dbc).Where("story_id = ?", storyID).Order("id ASC").Find(&forward).Error; err != nil {
		return nil, err
	}
	if err := s.rows.Active(dbc).Where("related_id = ?", storyID).Order("id ASC").Find(&reverse).Error; err != nil {
		return nil, err
	}

	resolved := stories.ResolveRelations(storyID, forward, reverse)
	ids := make([]uint, 0, len(resolved))
	for _, r := range resolved {
		ids = append(ids, r.RelatedID)
	}
	summaries, err := s.stories.Summaries(dbc, ids)
	if err != nil {
		return nil, err
	}

	out := make([]RelationView, 0, len(resolved))
	for _, r := range resolved {
		sum, ok := summaries[r.RelatedID]
		if !ok || !view.Allows(sum.OnlineAt) {
			continue
		}
		out = append(out, RelationView{ResolvedRelation: r, Related: sum})
	}
	return out, nil
}

// RemoveAllForStory soft-deletes every relation touching storyID in either direction.
// It has the DeleteHook signature so the story service can run it on delete.
func (s *Relations) RemoveAllForStory(tx dbctx.Context, storyID uint) error {
	n, err := s.rows.SoftDeleteWhere(tx, "(story_id = ? OR related_id = ?)", storyID, storyID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Debug("relations removed with story", "story_id", storyID, "rows", n)
	}
	return nil
}
