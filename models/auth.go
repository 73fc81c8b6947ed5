package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

type UserInfoResponse struct {
	UserID     int   `json:"user_id"`
	AdminClubs []int `json:"admin_clubs"`
	CoachClubs []int `json:"coach_clubs"`
}
