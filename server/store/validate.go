package store

import (
	"math"
	"slices"
	"strings"
)

// Round1 rounds miles to one decimal place, the precision every stored
// mileage value carries.
func Round1(miles float64) float64 {
	return math.Round(miles*10) / 10
}

// ValidateRun checks a run before it is stored. The returned run has its
// date canonicalized, its miles rounded and its strings trimmed.
func ValidateRun(run Run) (Run, error) {
	if run.Miles <= 0 {
		return run, newValidationError("Miles must be greater than 0")
	}
	run.Miles = Round1(run.Miles)

	run.Date = NormalizeRunDate(run.Date)
	if run.Date == "" {
		return run, newValidationError("Run date is required")
	}

	if run.Type == "" {
		run.Type = RunTypeTraining
	}
	if !slices.Contains(RunTypes, run.Type) {
		return run, newValidationError("Unknown run type %q", run.Type)
	}

	run.RaceName = strings.TrimSpace(run.RaceName)
	if run.Type == RunTypeRace && run.RaceName == "" {
		return run, newValidationError("Race name is required for races")
	}

	run.Notes = strings.TrimSpace(run.Notes)
	return run, nil
}

// ValidateAnnouncement checks an announcement before it is stored, trimming
// its title and body.
func ValidateAnnouncement(announcement Announcement) (Announcement, error) {
	if announcement.ClubID == "" {
		return announcement, newValidationError("Club is required")
	}

	announcement.Title = strings.TrimSpace(announcement.Title)
	if announcement.Title == "" {
		return announcement, newValidationError("Title is required")
	}

	announcement.Body = strings.TrimSpace(announcement.Body)
	if announcement.Body == "" {
		return announcement, newValidationError("Message is required")
	}

	return announcement, nil
}

// ValidateShoe checks a shoe before it is stored.
func ValidateShoe(shoe Shoe) (Shoe, error) {
	shoe.Name = strings.TrimSpace(shoe.Name)
	if shoe.Name == "" {
		return shoe, newValidationError("Shoe name is required")
	}
	if shoe.MilesLimit < 0 {
		return shoe, newValidationError("Mileage limit must not be negative")
	}
	shoe.Miles = Round1(math.Max(shoe.Miles, 0))
	return shoe, nil
}

// FilterAnnouncements drops records with an empty trimmed title or body so a
// prior partial write never surfaces malformed data in listings.
func FilterAnnouncements(announcements []Announcement) []Announcement {
	filtered := make([]Announcement, 0, len(announcements))
	for _, a := range announcements {
		if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Body) == "" {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}
