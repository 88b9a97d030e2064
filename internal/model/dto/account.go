package dto

import (
	"time"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

type RequestCheckPhone struct {
	Phone string `json:"phone"`
}

type RequestPostRegister struct {
	Phone        string `form:"phone" binding:"required,max=20"`
	Code         string `form:"code" binding:"required"`
	UserName     string `form:"userName" binding:"required,max=50"`
	RealName     string `form:"realName" binding:"required,max=50"`
	IDCardNumber string `form:"idCardNumber" binding:"required,max=30"`
	Location     string `form:"location" binding:"required,max=255"`
	BirthDate    string `form:"birthDate" binding:"required,datetime=2006-01-02"`
	Introduction string `form:"introduction"`
}

type RequestPostLogin struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type UserSummary struct {
	ID          uint   `json:"id"`
	UserName    string `json:"user_name"`
	PhoneNumber string `json:"phone_number"`
	UserAvatar  string `json:"user_avatar,omitempty"`
}

type AuthResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
	Token   string      `json:"token"`
}

// ProfileResponse is read with a single joined query; nullable columns come
// from rows that may not exist yet.
type ProfileResponse struct {
	ID                 uint                          `gorm:"column:id" json:"id"`
	PhoneNumber        string                        `gorm:"column:phone_number" json:"phone_number"`
	UserName           string                        `gorm:"column:user_name" json:"user_name"`
	RealName           string                        `gorm:"column:real_name" json:"real_name"`
	IDCardNumber       string                        `gorm:"column:id_card_number" json:"id_card_number"`
	UserAvatar         string                        `gorm:"column:user_avatar" json:"user_avatar"`
	Location           string                        `gorm:"column:location" json:"location"`
	BirthDate          string                        `gorm:"column:birth_date" json:"birth_date"`
	Introduction       *string                       `gorm:"column:introduction" json:"introduction"`
	CreateTime         time.Time                     `gorm:"column:create_time" json:"create_time"`
	VerificationStatus *constants.VerificationStatus `gorm:"column:verification_status" json:"verification_status"`
	BuyerRanking       *float64                      `gorm:"column:buyer_ranking" json:"buyer_ranking"`
	ProviderRole       *constants.ServiceCategory    `gorm:"column:provider_role" json:"provider_role"`
	OrderCount         *int                          `gorm:"column:order_count" json:"order_count"`
	ServiceRanking     *float64                      `gorm:"column:service_ranking" json:"service_ranking"`
}

type RequestUpdateProfile struct {
	UserName     string  `json:"user_name" binding:"required,max=50"`
	RealName     string  `json:"real_name" binding:"required,max=50"`
	IDCardNumber string  `json:"id_card_number" binding:"required,max=30"`
	Location     string  `json:"location" binding:"required,max=255"`
	BirthDate    string  `json:"birth_date" binding:"required,datetime=2006-01-02"`
	Introduction *string `json:"introduction"`
	UserAvatar   *string `json:"user_avatar"`
}

type CommentResponse struct {
	ID           uint      `gorm:"column:id" json:"id"`
	OrderID      uint      `gorm:"column:order_id" json:"order_id"`
	AuthorID     uint      `gorm:"column:author_id" json:"author_id"`
	TargetUserID uint      `gorm:"column:target_user_id" json:"target_user_id"`
	Score        int       `gorm:"column:score" json:"score"`
	Text         string    `gorm:"column:text" json:"text"`
	Time         time.Time `gorm:"column:time" json:"time"`
	AuthorName   string    `gorm:"column:author_name" json:"author_name"`
	AuthorAvatar string    `gorm:"column:author_avatar" json:"author_avatar"`
}
