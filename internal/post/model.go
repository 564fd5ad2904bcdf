package post

import (
	"time"
)

const MaxCategories = 4

type Post struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImageRef  *string   `json:"image_ref"`
	Category  string    `gorm:"not null;default:'general';index" json:"category"`
	Category2 *string   `gorm:"column:category2" json:"category2"`
	Category3 *string   `gorm:"column:category3" json:"category3"`
	Category4 *string   `gorm:"column:category4" json:"category4"`
}

// SetCategories répartit categories dans les quatre emplacements ; le premier
// vaut la catégorie par défaut si la liste est vide.
func (p *Post) SetCategories(categories []string, fallback string) {
	p.Category = fallback
	p.Category2, p.Category3, p.Category4 = nil, nil, nil
	slots := []**string{&p.Category2, &p.Category3, &p.Category4}
	for i, cat := range categories {
		if i == 0 {
			p.Category = cat
			continue
		}
		v := cat
		*slots[i-1] = &v
	}
}

type Comment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	PostID    int64     `gorm:"index;not null" json:"post_id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
}
