package web

import (
	"fmt"
	"time"

	"github.com/stridelog/stridelog/server/store"
)

func newRun(run store.Run, shoes []store.Shoe) Run {
	var shoeName string
	for _, shoe := range shoes {
		if shoe.ID == run.ShoeID {
			shoeName = shoe.Name
			break
		}
	}

	return Run{
		ID:       run.ID,
		UserID:   run.UserID,
		Date:     run.Date,
		Miles:    run.Miles,
		Type:     string(run.Type),
		RaceName: run.RaceName,
		Notes:    run.Notes,
		ShoeID:   run.ShoeID,
		ShoeName: shoeName,
		URL:      fmt.Sprintf("/runs/%s", run.ID),
	}
}

type Run struct {
	ID       string
	UserID   string
	Date     string
	Miles    float64
	Type     string
	RaceName string
	Notes    string
	ShoeID   string
	ShoeName string
	URL      string
}

func newShoe(shoe store.Shoe) Shoe {
	s := Shoe{
		ID:         shoe.ID,
		Name:       shoe.Name,
		Miles:      shoe.Miles,
		MilesLimit: shoe.MilesLimit,
		Active:     shoe.Active,
		URL:        fmt.Sprintf("/shoes/%s", shoe.ID),
	}
	if shoe.MilesLimit > 0 {
		s.WearPercent = int(shoe.Miles / shoe.MilesLimit * 100)
		s.WornOut = shoe.Miles >= shoe.MilesLimit
	}
	return s
}

type Shoe struct {
	ID          string
	Name        string
	Miles       float64
	MilesLimit  float64
	Active      bool
	WearPercent int
	WornOut     bool
	URL         string
}

func newClub(club store.ClubWithRole, active bool) Club {
	return Club{
		ID:     club.ID,
		Name:   club.Name,
		Admin:  club.Admin,
		Active: active,
	}
}

type Club struct {
	ID     string
	Name   string
	Admin  bool
	Active bool
}

func newAnnouncement(announcement store.Announcement) Announcement {
	return Announcement{
		ID:        announcement.ID,
		Title:     announcement.Title,
		Body:      announcement.Body,
		Audience:  announcement.Audience,
		CreatedAt: announcement.CreatedAt,
		UpdatedAt: announcement.UpdatedAt,
	}
}

type Announcement struct {
	ID        string
	Title     string
	Body      string
	Audience  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newMember(membership store.Membership) Member {
	return Member{
		UserID:      membership.UserID,
		DisplayName: membership.DisplayName,
		Email:       membership.Email,
		Phone:       membership.Phone,
		Admin:       membership.Admin,
		JoinedAt:    membership.CreatedAt,
		URL:         fmt.Sprintf("/members/%s", membership.UserID),
	}
}

type Member struct {
	UserID      string
	DisplayName string
	Email       string
	Phone       string
	Admin       bool
	JoinedAt    time.Time
	URL         string
}

func newInvite(invite store.Invite, club store.Club) Invite {
	return Invite{
		Token:     invite.Token,
		ClubName:  club.Name,
		Email:     invite.Email,
		Admin:     invite.Admin,
		ExpiresAt: invite.ExpiresAt,
		Consumed:  invite.ConsumedAt != nil,
		JoinURL:   fmt.Sprintf("/join?token=%s", invite.Token),
		QRURL:     fmt.Sprintf("/invites/%s/qr", invite.Token),
	}
}

type Invite struct {
	Token     string
	ClubName  string
	Email     string
	Admin     bool
	ExpiresAt time.Time
	Consumed  bool
	JoinURL   string
	QRURL     string
}
