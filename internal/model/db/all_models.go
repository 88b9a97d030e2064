package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber  string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone_number"`
	UserName     string    `gorm:"type:varchar(50);not null" json:"user_name"`
	RealName     string    `gorm:"type:varchar(50);not null" json:"real_name"`
	IDCardNumber string    `gorm:"column:id_card_number;type:varchar(30);uniqueIndex;not null" json:"id_card_number"`
	UserAvatar   string    `gorm:"type:varchar(255);not null;default:'/img/user.svg'" json:"user_avatar"`
	Location     string    `gorm:"type:varchar(255);not null" json:"location"`
	BirthDate    string    `gorm:"type:varchar(10);not null" json:"birth_date"`
	Introduction *string   `gorm:"type:text" json:"introduction"`
	CreateTime   time.Time `gorm:"autoCreateTime" json:"create_time"`
}

type Consumer struct {
	ConsumerID   uint    `gorm:"primaryKey;autoIncrement:false" json:"consumer_id"`
	BuyerRanking float64 `gorm:"not null;default:0" json:"buyer_ranking"`
}

type Provider struct {
	ProviderID     uint                      `gorm:"primaryKey;autoIncrement:false" json:"provider_id"`
	ProviderRole   constants.ServiceCategory `gorm:"not null" json:"provider_role"`
	OrderCount     int                       `gorm:"not null;default:0" json:"order_count"`
	ServiceRanking float64                   `gorm:"not null;default:0" json:"service_ranking"`
}

type Event struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	CreatorID     uint                `gorm:"index;not null" json:"creator_id"`
	EventTitle    string              `gorm:"type:varchar(100);not null" json:"event_title"`
	EventType     constants.EventType `gorm:"not null;default:0" json:"event_type"`
	EventCategory string              `gorm:"type:varchar(50);not null" json:"event_category"`
	Photos        StringList          `gorm:"type:text" json:"photos"`
	Location      string              `gorm:"type:varchar(255);not null" json:"location"`
	Price         float64             `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	EventDetails  string              `gorm:"type:text;not null" json:"event_details"`
	CreateTime    time.Time           `gorm:"autoCreateTime" json:"create_time"`
}

type Verification struct {
	ID                 uint                         `gorm:"primaryKey" json:"id"`
	ProviderID         uint                         `gorm:"index;not null" json:"provider_id"`
	ServiceCategory    constants.ServiceCategory    `gorm:"not null" json:"service_category"`
	VerificationStatus constants.VerificationStatus `gorm:"not null;default:0" json:"verification_status"`
	IDCardPhoto        StringList                   `gorm:"column:id_card_photo;type:text" json:"id_card_photo"`
	ProfessionPhoto    StringList                   `gorm:"type:text" json:"profession_photo"`
	SubmissionTime     time.Time                    `gorm:"not null" json:"submission_time"`
	PassingTime        *time.Time                   `json:"passing_time"`
	Results            *string                      `gorm:"type:text" json:"results"`
}

type Order struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	EventID     uint                  `gorm:"index;not null" json:"event_id"`
	ConsumerID  uint                  `gorm:"index;not null" json:"consumer_id"`
	ProviderID  *uint                 `gorm:"index" json:"provider_id"`
	Status      constants.OrderStatus `gorm:"not null;default:0" json:"status"`
	Price       float64               `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Note        string                `gorm:"type:text" json:"note"`
	ServiceTime *time.Time            `json:"service_time"`
	CreateTime  time.Time             `gorm:"autoCreateTime" json:"create_time"`
	UpdateTime  time.Time             `gorm:"autoUpdateTime" json:"update_time"`
	FinishTime  *time.Time            `json:"finish_time"`
}

type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"uniqueIndex:idx_comment_order_author;not null" json:"order_id"`
	AuthorID     uint      `gorm:"uniqueIndex:idx_comment_order_author;not null" json:"author_id"`
	TargetUserID uint      `gorm:"index;not null" json:"target_user_id"`
	Score        int       `gorm:"not null" json:"score"`
	Text         string    `gorm:"type:text" json:"text"`
	Time         time.Time `gorm:"autoCreateTime" json:"time"`
}

type Staff struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	UserName   string             `gorm:"type:varchar(50);uniqueIndex;not null" json:"user_name"`
	Password   string             `gorm:"type:varchar(255);not null" json:"-"`
	Role       constants.UserRole `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	CreateTime time.Time          `gorm:"autoCreateTime" json:"create_time"`
}

func (Staff) TableName() string {
	return "staff"
}

// AllModels lists every table managed by auto-migration.
func AllModels() []any {
	return []any{
		&User{},
		&Consumer{},
		&Provider{},
		&Event{},
		&Verification{},
		&Order{},
		&Comment{},
		&Staff{},
	}
}

// StringList is a list of image paths stored as a JSON array in a text column.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("unsupported StringList source %T", value)
	}
	list, err := ParseStringList(raw)
	if err != nil {
		// unreadable legacy value, keep it as a single raw path
		list = StringList{strings.TrimSpace(raw)}
	}
	*s = list
	return nil
}

func (StringList) GormDataType() string {
	return "text"
}

// ParseStringList accepts a JSON array of strings. Older rows stored a bare
// path, which is read back as a single element list.
func ParseStringList(raw string) (StringList, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") {
		return StringList{raw}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return StringList(list), nil
}

// First returns the first path or an empty string.
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
