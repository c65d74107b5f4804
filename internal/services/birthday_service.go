package services

import (
	"fmt"
	"sort"
	"time"

	"odyssee/internal/repos"
)

// Birthday is an upcoming client or child birthday within the lookahead
// window, with a ready-to-send greeting.
type Birthday struct {
	Name       string
	IsChild    bool
	ParentName string
	Phone      string
	Date       time.Time // next occurrence
	DaysLeft   int
	TurnsAge   int
	Message    string
}

type BirthdayService struct {
	Clients *repos.ClientRepo
}

func NewBirthdayService(clients *repos.ClientRepo) *BirthdayService {
	return &BirthdayService{Clients: clients}
}

// Upcoming lists birthdays falling within the next windowDays days, soonest
// first. A birthday already past this year rolls to next year.
func (s *BirthdayService) Upcoming(now time.Time, windowDays int) ([]Birthday, error) {
	clients, err := s.Clients.AllWithBirthDate()
	if err != nil {
		return nil, err
	}
	children, err := s.Clients.AllChildrenWithBirthDate()
	if err != nil {
		return nil, err
	}

	parentByID := make(map[string]string, len(clients))
	phoneByID := make(map[string]string, len(clients))
	for _, c := range clients {
		parentByID[c.ID] = c.FirstName
		phoneByID[c.ID] = c.Phone
	}
	// Children of clients without a stored birth date still need parent info.
	all, err := s.Clients.List("")
	if err == nil {
		for _, c := range all {
			parentByID[c.ID] = c.FirstName
			phoneByID[c.ID] = c.Phone
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var out []Birthday

	for _, c := range clients {
		if b, ok := nextBirthday(c.BirthDate, today, windowDays); ok {
			b.Name = c.FirstName + " " + c.LastName
			b.Phone = c.Phone
			b.Message = fmt.Sprintf("Bonjour %s, l'équipe d'Odyssée Sucrée vous souhaite un joyeux anniversaire pour vos %d ans !", c.FirstName, b.TurnsAge)
			out = append(out, b)
		}
	}
	for _, ch := range children {
		if b, ok := nextBirthday(ch.BirthDate, today, windowDays); ok {
			b.Name = ch.FirstName
			b.IsChild = true
			b.ParentName = parentByID[ch.ClientID]
			b.Phone = phoneByID[ch.ClientID]
			b.Message = fmt.Sprintf("Bonjour, l'équipe d'Odyssée Sucrée souhaite un joyeux anniversaire à %s pour ses %d ans !", ch.FirstName, b.TurnsAge)
			out = append(out, b)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out, nil
}

func nextBirthday(birthDate string, today time.Time, windowDays int) (Birthday, bool) {
	born, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return Birthday{}, false
	}
	next := time.Date(today.Year(), born.Month(), born.Day(), 0, 0, 0, 0, today.Location())
	if next.Before(today) {
		next = next.AddDate(1, 0, 0)
	}
	days := calendarDays(today, next)
	if days > windowDays {
		return Birthday{}, false
	}
	return Birthday{Date: next, DaysLeft: days, TurnsAge: next.Year() - born.Year()}, true
}

// calendarDays counts whole calendar days from one date to another. The
// dates are renormalized to UTC midnights first so a DST transition in the
// local zone cannot shave a day off the count.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}
