// Package trainers holds the static directory of personal trainers.
// Entries are defined at deployment time; there is no independent lifecycle.
package trainers

import "strings"

// FallbackName is used whenever a trainer email cannot be resolved.
const FallbackName = "Your Coach"

// Trainer is a directory entry. Phone is the WhatsApp number with country
// code and may be empty until the trainer provides one.
type Trainer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Directory resolves trainer contact details by email, case-insensitively.
type Directory struct {
	trainers []Trainer
}

// NewDirectory creates a directory over the given entries.
func NewDirectory(entries []Trainer) *Directory {
	return &Directory{trainers: entries}
}

// Default returns the directory of trainers currently on staff.
func Default() *Directory {
	return NewDirectory([]Trainer{
		{Name: "Mael Chaaya", Email: "maelchaaya5@gmail.com", Phone: "96170803877"},
		{Name: "Lolita", Email: "lolitahayek2005@gmail.com", Phone: "96171166483"},
		{Name: "Jimmy", Email: "Jimmybm30@gmail.com", Phone: "96176425550"},
		{Name: "Cyril", Email: "Cyril.assaad76@gmail.com", Phone: "96176323797"},
		{Name: "Cindy", Email: "cindyfadel2018@gmail.com", Phone: "96176770779"},
		{Name: "Mohamad Abou Salem", Email: "mba26@mail.aub.edu", Phone: "96176940007"},
		{Name: "Mohamad Wehby", Email: "mo20.03dy@gmail.com", Phone: "96181859561"},
		{Name: "Mohamed Sabry", Email: "Mohamedsabry3181@gmail.com", Phone: "201005613188"},
		{Name: "Charbel Sleiman", Email: "Charbelsleiman517@gmail.com", Phone: "96171654376"},
		{Name: "Rayane Karam", Email: "rayanekaram33@gmail.com", Phone: "96176089268"},
		{Name: "Mohamad Toukhy", Email: "eltoukhymohamed863@gmail.com", Phone: "201005613188"},
		{Name: "Adam Daaboul", Email: "adamdaaboul@gmail.com", Phone: "96170667758"},
	})
}

// Resolve returns the trainer for the given email, or nil if the email is
// empty or unknown.
func (d *Directory) Resolve(email string) *Trainer {
	if email == "" {
		return nil
	}
	for i := range d.trainers {
		if strings.EqualFold(d.trainers[i].Email, email) {
			return &d.trainers[i]
		}
	}
	return nil
}

// Name returns the trainer's display name for the given email, falling back
// to a generic label when the email is empty or unresolvable.
func (d *Directory) Name(email string) string {
	if t := d.Resolve(email); t != nil {
		return t.Name
	}
	return FallbackName
}

// Phone returns the trainer's WhatsApp number, or "" when unknown.
func (d *Directory) Phone(email string) string {
	if t := d.Resolve(email); t != nil {
		return t.Phone
	}
	return ""
}

// All returns every directory entry, for the intake form's trainer picker.
func (d *Directory) All() []Trainer {
	out := make([]Trainer, len(d.trainers))
	copy(out, d.trainers)
	return out
}
