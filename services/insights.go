package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"letterboxd-sync/models"
	"letterboxd-sync/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(records []*models.Record) *models.DiaryReport {
	report := &models.DiaryReport{
		EntriesByYear: make(map[int]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalEntries = len(records)

	var rated []*models.Record
	var total float64

	for _, r := range records {
		if r.IsRewatch {
			report.Rewatches++
		}
		if r.Rating != nil {
			rated = append(rated, r)
			total += *r.Rating
		}
		if r.HasDate() {
			report.EntriesByYear[r.WatchedDate.Year()]++
		}
	}

	report.RatedEntries = len(rated)
	if len(rated) > 0 {
		report.AverageRating = round2(total / float64(len(rated)))
	}

	// Top 5 by rating, most recent first among ties
	sort.SliceStable(rated, func(i, j int) bool {
		if *rated[i].Rating != *rated[j].Rating {
			return *rated[i].Rating > *rated[j].Rating
		}
		return rated[i].WatchedDate.After(rated[j].WatchedDate)
	})
	if len(rated) > 5 {
		report.TopRated = rated[:5]
	} else {
		report.TopRated = rated
	}

	return report
}

func (s *InsightService) Print(w io.Writer, r *models.DiaryReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🎬 LETTERBOXD DIARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Diary entries : \033[1m%d\033[0m\n", r.TotalEntries)
	fmt.Fprintf(w, "  Rewatches     : \033[1m%d\033[0m\n", r.Rewatches)
	if r.RatedEntries > 0 {
		fmt.Fprintf(w, "  Avg rating    : \033[1;32m%.2f ★\033[0m (%d rated)\n", r.AverageRating, r.RatedEntries)
	} else {
		fmt.Fprintf(w, "  No ratings recorded\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top Rated\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Fprintf(w, "  No rated films found\n")
	} else {
		for i, f := range r.TopRated {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%.1f ★\033[0m\n",
				i+1, truncate(f.Title, 38), *f.Rating)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Films per Year\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.EntriesByYear) == 0 {
		fmt.Fprintf(w, "  No dated entries\n")
	} else {
		years := make([]int, 0, len(r.EntriesByYear))
		for y := range r.EntriesByYear {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			n := r.EntriesByYear[y]
			bar := strings.Repeat("█", min(n, 40))
			fmt.Fprintf(w, "  %d  %s (%d)\n", y, bar, n)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
