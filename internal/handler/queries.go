package handler

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

const profileQuery = `
SELECT
	u.id, u.phone_number, u.user_name, u.real_name, u.id_card_number, u.user_avatar,
	u.location, u.birth_date, u.introduction, u.create_time,
	(SELECT v.verification_status FROM verifications v
		WHERE v.provider_id = u.id
		ORDER BY v.submission_time DESC, v.id DESC LIMIT 1) AS verification_status,
	c.buyer_ranking,
	p.provider_role, p.order_count, p.service_ranking
FROM users u
LEFT JOIN consumers c ON c.consumer_id = u.id
LEFT JOIN providers p ON p.provider_id = u.id
WHERE u.id = ?`

// loadProfile returns nil when the user does not exist.
func loadProfile(conn *gorm.DB, userID uint) (*dto.ProfileResponse, error) {
	var profile dto.ProfileResponse
	result := conn.Raw(profileQuery, userID).Scan(&profile)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &profile, nil
}

// latestVerification returns the newest verification of a provider, or
// gorm.ErrRecordNotFound.
func latestVerification(conn *gorm.DB, providerID uint) (*db.Verification, error) {
	var v db.Verification
	err := conn.Where("provider_id = ?", providerID).
		Order("submission_time DESC").Order("id DESC").
		Take(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func isApprovedProvider(conn *gorm.DB, userID uint) (bool, error) {
	v, err := latestVerification(conn, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return v.VerificationStatus == constants.VerificationApproved, nil
}

func idCardTaken(conn *gorm.DB, idCard string, exceptUserID uint) (bool, error) {
	var count int64
	err := conn.Model(&db.User{}).
		Where("id_card_number = ? AND id <> ?", idCard, exceptUserID).
		Count(&count).Error
	return count > 0, err
}

// pathReferenced reports whether a stored row still points at path.
func pathReferenced(conn *gorm.DB, path string) (bool, error) {
	quoted := "%\"" + path + "\"%"

	var count int64
	if err := conn.Model(&db.Event{}).Where("photos = ? OR photos LIKE ?", path, quoted).Count(&count).Error; err != nil || count > 0 {
		return count > 0, err
	}
	if err := conn.Model(&db.User{}).Where("user_avatar = ?", path).Count(&count).Error; err != nil || count > 0 {
		return count > 0, err
	}
	err := conn.Model(&db.Verification{}).
		Where("id_card_photo LIKE ? OR profession_photo LIKE ?", quoted, quoted).
		Count(&count).Error
	return count > 0, err
}

// removeUnreferenced deletes the files of paths no stored row points at.
// Run it after the commit that dropped them. Files whose check fails are kept.
func removeUnreferenced(conn *gorm.DB, storage *util.ImageStorage, log *zap.Logger, paths []string) {
	orphans := make([]string, 0, len(paths))
	for _, p := range paths {
		inUse, err := pathReferenced(conn, p)
		if err != nil {
			log.Warn("check upload references", zap.String("path", p), zap.Error(err))
			continue
		}
		if !inUse {
			orphans = append(orphans, p)
		}
	}
	storage.Cleanup(orphans)
}
