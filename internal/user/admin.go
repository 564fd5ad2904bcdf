package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/campusnet/CampusFeed-Back/internal/session"
)

// RoleOf relit le rôle d'un utilisateur en base, sans faire confiance au jeton.
func RoleOf(ctx context.Context, db *gorm.DB, userID int64) (session.Role, error) {
	var roles []string
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Pluck("role", &roles).Error; err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return session.Role(roles[0]), nil
}

// IsAdmin vérifie si un utilisateur est admin à partir de son ID
func IsAdmin(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	role, err := RoleOf(ctx, db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil // utilisateur introuvable, donc pas admin
		}
		return false, err
	}
	return role == session.RoleAdmin, nil
}

// OwnerOrAdmin autorise l'auteur d'une ressource ou un admin confirmé en base.
func OwnerOrAdmin(ctx context.Context, db *gorm.DB, p session.Principal, ownerID int64) (bool, error) {
	if p.IsGuest() {
		return false, nil
	}
	if p.ID == ownerID {
		return true, nil
	}
	return IsAdmin(ctx, db, p.ID)
}
