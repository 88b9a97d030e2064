// Package seed creates the initial staff account and optional demo data.
package seed

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
)

const DefaultAdminName = "admin"

var ErrStaffNotFound = errors.New("staff account not found")

// Seed creates the admin account unless staff already exist, then the demo
// data when enabled and the user table is empty.
func Seed(dbConn *gorm.DB, app *configs.AppConfig, log *zap.Logger) error {
	var count int64
	if err := dbConn.Model(&db.Staff{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count staff")
	}
	if count > 0 {
		log.Info("staff seeding skipped, accounts already exist")
	} else {
		if _, err := AddStaff(dbConn, DefaultAdminName, app.SeedAdminPassword, constants.RoleAdmin); err != nil {
			return err
		}
		log.Info("admin account created", zap.String("user_name", DefaultAdminName))
	}

	if !app.SeedDemoData {
		return nil
	}
	return Demo(dbConn, log)
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func AddStaff(dbConn *gorm.DB, userName, password string, role constants.UserRole) (*db.Staff, error) {
	if !role.IsStaff() {
		return nil, errors.Errorf("role %q is not a staff role", role)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	staff := db.Staff{UserName: strings.TrimSpace(userName), Password: hash, Role: role}
	if err := dbConn.Create(&staff).Error; err != nil {
		return nil, errors.Wrapf(err, "create staff %s", staff.UserName)
	}
	return &staff, nil
}

func ResetStaffPassword(dbConn *gorm.DB, userName, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	res := dbConn.Model(&db.Staff{}).Where("user_name = ?", strings.TrimSpace(userName)).Update("password", hash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update staff password")
	}
	if res.RowsAffected == 0 {
		return ErrStaffNotFound
	}
	return nil
}

type demoUser struct {
	phone, name, realName, idCard, location string
}

var demoUsers = []demoUser{
	{"13800000001", "Alice", "Alice Zhang", "110101199001010011", "Beijing"},
	{"13800000002", "Bob", "Bob Li", "110101199202020022", "Shanghai"},
	{"13800000003", "Carol", "Carol Wang", "110101199303030033", "Hangzhou"},
}

// Demo inserts a few users, an approved provider and listings of both kinds.
func Demo(dbConn *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := dbConn.Model(&db.User{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count users")
	}
	if count > 0 {
		log.Info("demo seeding skipped, users already exist")
		return nil
	}

	return dbConn.Transaction(func(tx *gorm.DB) error {
		users := make([]db.User, 0, len(demoUsers))
		for _, d := range demoUsers {
			user := db.User{
				PhoneNumber:  d.phone,
				UserName:     d.name,
				RealName:     d.realName,
				IDCardNumber: d.idCard,
				UserAvatar:   constants.DefaultUserAvatar,
				Location:     d.location,
				BirthDate:    "1990-01-01",
			}
			if err := tx.Create(&user).Error; err != nil {
				return errors.Wrapf(err, "seed user %s", d.phone)
			}
			if err := tx.Create(&db.Consumer{ConsumerID: user.ID}).Error; err != nil {
				return errors.Wrapf(err, "seed consumer %d", user.ID)
			}
			users = append(users, user)
		}

		// Bob is an approved part-time provider
		provider := users[1]
		if err := tx.Create(&db.Provider{ProviderID: provider.ID, ProviderRole: constants.ServicePartTime}).Error; err != nil {
			return errors.Wrap(err, "seed provider")
		}
		now := time.Now()
		verification := db.Verification{
			ProviderID:         provider.ID,
			ServiceCategory:    constants.ServicePartTime,
			VerificationStatus: constants.VerificationApproved,
			SubmissionTime:     now,
			PassingTime:        &now,
		}
		if err := tx.Create(&verification).Error; err != nil {
			return errors.Wrap(err, "seed verification")
		}

		events := []db.Event{
			{
				CreatorID:     users[0].ID,
				EventTitle:    "Need help moving a sofa",
				EventType:     constants.EventTypeRequest,
				EventCategory: "moving",
				Location:      users[0].Location,
				Price:         50,
				EventDetails:  "Third floor, no elevator. Saturday morning.",
			},
			{
				CreatorID:     provider.ID,
				EventTitle:    "Weekend dog walking",
				EventType:     constants.EventTypeOffer,
				EventCategory: "pets",
				Location:      provider.Location,
				Price:         20,
				EventDetails:  "One hour walks around the neighbourhood.",
			},
			{
				CreatorID:     users[2].ID,
				EventTitle:    "Math tutoring for grade 8",
				EventType:     constants.EventTypeRequest,
				EventCategory: "education",
				Location:      users[2].Location,
				Price:         80,
				EventDetails:  "Two evenings a week, algebra focus.",
			},
		}
		if err := tx.Create(&events).Error; err != nil {
			return errors.Wrap(err, "seed events")
		}

		log.Info("demo data created", zap.Int("users", len(users)), zap.Int("events", len(events)))
		return nil
	})
}
