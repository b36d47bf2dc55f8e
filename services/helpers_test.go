package services

import (
	"time"

	"letterboxd-sync/models"
	"letterboxd-sync/utils"
)

func newTestLogger() *utils.Logger { return utils.NopLogger() }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(date time.Time, title string) *models.Record {
	return &models.Record{WatchedDate: date, Title: title}
}
