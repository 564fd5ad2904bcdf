package feed

import (
	"strings"
)

// Builder compose la requête du fil : filtres, drapeaux du lecteur et
// expression de palier. Une seule requête en lecture est produite.
type Builder struct {
	selectArgs []interface{}
	extraCols  []string

	where     []string
	whereArgs []interface{}

	tiered bool
	limit  int
	offset int
}

const baseColumns = `p.id, p.created_at, p.user_id, p.body, p.image_ref,
	p.category, p.category2, p.category3, p.category4,
	u.username AS author_username, u.avatar_url AS author_avatar, u.city AS author_city,
	(SELECT COUNT(*) FROM likes lc WHERE lc.post_id = p.id) AS like_count,
	(SELECT COUNT(*) FROM comments cc WHERE cc.post_id = p.id) AS comment_count`

const categorySlots = 4

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Author(userID int64) *Builder {
	b.where = append(b.where, "p.user_id = ?")
	b.whereArgs = append(b.whereArgs, userID)
	return b
}

func (b *Builder) Post(postID int64) *Builder {
	b.where = append(b.where, "p.id = ?")
	b.whereArgs = append(b.whereArgs, postID)
	return b
}

func (b *Builder) BookmarkedBy(userID int64) *Builder {
	b.where = append(b.where, "EXISTS (SELECT 1 FROM bookmarks bf WHERE bf.post_id = p.id AND bf.user_id = ?)")
	b.whereArgs = append(b.whereArgs, userID)
	return b
}

// Category garde les posts portant category dans l'un de leurs quatre emplacements.
func (b *Builder) Category(category string) *Builder {
	b.where = append(b.where, anySlot("= ?"))
	for i := 0; i < categorySlots; i++ {
		b.whereArgs = append(b.whereArgs, category)
	}
	return b
}

// AnyCategory garde les posts dont un emplacement appartient à categories.
func (b *Builder) AnyCategory(categories []string) *Builder {
	if len(categories) == 0 {
		return b
	}
	b.where = append(b.where, anySlot("IN ?"))
	for i := 0; i < categorySlots; i++ {
		b.whereArgs = append(b.whereArgs, categories)
	}
	return b
}

// Viewer ajoute les drapeaux liked / bookmarked du lecteur.
func (b *Builder) Viewer(viewerID int64) *Builder {
	b.extraCols = append(b.extraCols,
		"EXISTS (SELECT 1 FROM likes lv WHERE lv.post_id = p.id AND lv.user_id = ?) AS liked",
		"EXISTS (SELECT 1 FROM bookmarks bv WHERE bv.post_id = p.id AND bv.user_id = ?) AS bookmarked",
	)
	b.selectArgs = append(b.selectArgs, viewerID, viewerID)
	return b
}

// Tiered ajoute la colonne tier. Les WHEN sont évalués dans l'ordre : un post
// qui correspond à plusieurs paliers reçoit le plus petit.
func (b *Builder) Tiered(viewerID int64, s Signals) *Builder {
	var sb strings.Builder
	sb.WriteString("CASE")

	sb.WriteString(" WHEN EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = ? AND f.followed_id = p.user_id) THEN 0")
	b.selectArgs = append(b.selectArgs, viewerID)

	if s.City != "" {
		sb.WriteString(" WHEN u.city = ? THEN 1")
		b.selectArgs = append(b.selectArgs, s.City)
	}

	sb.WriteString(" WHEN ")
	sb.WriteString(anySlot("IN ?"))
	sb.WriteString(" THEN 2")
	interests := s.Interests()
	for i := 0; i < categorySlots; i++ {
		b.selectArgs = append(b.selectArgs, interests)
	}

	sb.WriteString(" ELSE 3 END AS tier")
	b.extraCols = append(b.extraCols, sb.String())
	b.tiered = true
	return b
}

func (b *Builder) Page(limit, offset int) *Builder {
	b.limit = limit
	b.offset = offset
	return b
}

// Build retourne le SQL paramétré et ses arguments, dans l'ordre des "?".
func (b *Builder) Build() (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(b.selectArgs)+len(b.whereArgs)+2)

	sb.WriteString("SELECT ")
	sb.WriteString(baseColumns)
	for _, col := range b.extraCols {
		sb.WriteString(", ")
		sb.WriteString(col)
	}
	args = append(args, b.selectArgs...)

	sb.WriteString(" FROM posts p JOIN users u ON u.id = p.user_id")

	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
		args = append(args, b.whereArgs...)
	}

	sb.WriteString(" ORDER BY ")
	if b.tiered {
		sb.WriteString("tier ASC, ")
	}
	sb.WriteString("p.created_at DESC, p.id DESC")

	if b.limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, b.limit, b.offset)
	}
	return sb.String(), args
}

// anySlot produit "(p.category <cond> OR p.category2 <cond> OR ...)".
func anySlot(cond string) string {
	cols := []string{"p.category", "p.category2", "p.category3", "p.category4"}
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + " " + cond
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
