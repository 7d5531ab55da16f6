package ui

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/meetly-app/meetly/pkg/models"
)

// DateLayout is the input format for event dates.
const DateLayout = "2006-01-02"

// MinPasswordLength mirrors the server's registration rule.
const MinPasswordLength = 6

// Forms collects structured input: huh prompts interactively, stored
// answers headlessly.
type Forms struct {
	theme    *Theme
	headless *HeadlessManager
}

// NewForms returns Forms.
func NewForms(theme *Theme, hm *HeadlessManager) *Forms {
	return &Forms{theme: theme, headless: hm}
}

// ValidateEmail accepts a bare address.
func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return errors.New("enter a valid email address")
	}
	return nil
}

// ValidatePassword enforces the minimum length.
func ValidatePassword(s string) error {
	if len(s) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// field returns the stored answer or prompts for it.
func (f *Forms) field(key string) (string, bool) {
	return f.headless.Answer(key)
}

// Login collects credentials.
func (f *Forms) Login() (models.LoginRequest, error) {
	email, haveEmail := f.field("email")
	password, havePassword := f.field("password")

	if f.headless.IsHeadless() || (haveEmail && havePassword) {
		if !haveEmail {
			return models.LoginRequest{}, &ErrHeadlessMissing{Key: "email"}
		}
		if !havePassword {
			return models.LoginRequest{}, &ErrHeadlessMissing{Key: "password"}
		}
		if err := ValidateEmail(email); err != nil {
			return models.LoginRequest{}, err
		}
		return models.LoginRequest{Email: strings.TrimSpace(email), Password: password}, nil
	}

	err := f.theme.runForm(
		huh.NewInput().Title("Email").Placeholder("you@example.com").Value(&email).Validate(ValidateEmail),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).Validate(required("password")),
	)
	if err != nil {
		return models.LoginRequest{}, err
	}
	return models.LoginRequest{Email: strings.TrimSpace(email), Password: password}, nil
}

// Register collects a new account. Only User and Host may self-register.
func (f *Forms) Register() (models.RegisterRequest, error) {
	var req models.RegisterRequest
	req.Name, _ = f.field("name")
	req.Email, _ = f.field("email")
	req.Password, _ = f.field("password")
	role, _ := f.field("role")
	req.Role = models.RoleUser
	if role != "" {
		r, err := models.ParseRole(role)
		if err != nil || r == models.RoleAdmin {
			return req, fmt.Errorf("role must be User or Host")
		}
		req.Role = r
	}

	if f.headless.IsHeadless() {
		for key, v := range map[string]string{"name": req.Name, "email": req.Email, "password": req.Password} {
			if v == "" {
				return req, &ErrHeadlessMissing{Key: key}
			}
		}
		if err := ValidateEmail(req.Email); err != nil {
			return req, err
		}
		return req, ValidatePassword(req.Password)
	}

	var confirm string
	err := f.theme.runForm(
		huh.NewInput().Title("Full name").Value(&req.Name).Validate(required("name")),
		huh.NewInput().Title("Email").Value(&req.Email).Validate(ValidateEmail),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&req.Password).Validate(ValidatePassword),
		huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm).
			Validate(func(s string) error {
				if s != req.Password {
					return errors.New("passwords do not match")
				}
				return nil
			}),
		huh.NewSelect[models.Role]().Title("I want to").
			Options(
				huh.NewOption("Join events", models.RoleUser),
				huh.NewOption("Host events", models.RoleHost),
			).
			Value(&req.Role),
	)
	req.Email = strings.TrimSpace(req.Email)
	return req, err
}

// EventFields are the raw text inputs of the event form.
type EventFields struct {
	Title, Description, Category, Location string
	Date, Time, MaxParticipants, Price     string
	Tags, ImageURL                         string
}

func eventFieldsFrom(in models.EventInput) EventFields {
	f := EventFields{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		Time:        in.Time,
		Tags:        strings.Join(in.Tags, ", "),
		ImageURL:    in.ImageURL,
	}
	if !in.Date.IsZero() {
		f.Date = in.Date.Format(DateLayout)
	}
	if in.MaxParticipants > 0 {
		f.MaxParticipants = strconv.Itoa(in.MaxParticipants)
	}
	if in.IsPaid {
		f.Price = strconv.FormatFloat(in.Price, 'f', 2, 64)
	}
	return f
}

// Parse validates the fields and builds an EventInput. A positive price
// makes the event paid.
func (e EventFields) Parse() (models.EventInput, error) {
	var in models.EventInput
	var errs []error

	in.Title = strings.TrimSpace(e.Title)
	in.Description = strings.TrimSpace(e.Description)
	in.Category = strings.TrimSpace(e.Category)
	in.Location = strings.TrimSpace(e.Location)
	in.Time = strings.TrimSpace(e.Time)
	in.ImageURL = strings.TrimSpace(e.ImageURL)
	if in.Title == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if in.Description == "" {
		errs = append(errs, errors.New("description is required"))
	}

	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(e.Date), time.Local)
	if err != nil {
		errs = append(errs, fmt.Errorf("date must be %s", DateLayout))
	}
	in.Date = d

	if in.Time != "" {
		if _, err := time.Parse("15:04", in.Time); err != nil {
			errs = append(errs, errors.New("time must be HH:MM"))
		}
	}

	n, err := strconv.Atoi(strings.TrimSpace(e.MaxParticipants))
	if err != nil || n < 1 {
		errs = append(errs, errors.New("max participants must be a positive number"))
	}
	in.MaxParticipants = n

	if p := strings.TrimSpace(e.Price); p != "" {
		price, err := strconv.ParseFloat(p, 64)
		if err != nil || price < 0 {
			errs = append(errs, errors.New("price must be a non-negative number"))
		}
		in.Price = price
		in.IsPaid = price > 0
	}

	for _, tag := range strings.Split(e.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			in.Tags = append(in.Tags, tag)
		}
	}
	return in, errors.Join(errs...)
}

// Event collects an event for create or update. initial pre-fills the
// form; answers override it field by field.
func (f *Forms) Event(initial models.EventInput) (models.EventInput, error) {
	fields := eventFieldsFrom(initial)
	for key, dst := range map[string]*string{
		"title": &fields.Title, "description": &fields.Description, "category": &fields.Category,
		"location": &fields.Location, "date": &fields.Date, "time": &fields.Time,
		"max": &fields.MaxParticipants, "price": &fields.Price, "tags": &fields.Tags, "image": &fields.ImageURL,
	} {
		if v, ok := f.field(key); ok {
			*dst = v
		}
	}

	if f.headless.IsHeadless() {
		return fields.Parse()
	}

	err := f.theme.runForm(
		huh.NewInput().Title("Title").Value(&fields.Title).Validate(required("title")),
		huh.NewText().Title("Description").Description("Markdown supported").Value(&fields.Description).Validate(required("description")),
		huh.NewInput().Title("Category").Value(&fields.Category),
		huh.NewInput().Title("Location").Value(&fields.Location),
		huh.NewInput().Title("Date").Placeholder(DateLayout).Value(&fields.Date).
			Validate(func(s string) error {
				_, err := time.Parse(DateLayout, strings.TrimSpace(s))
				return err
			}),
		huh.NewInput().Title("Time").Placeholder("18:30").Value(&fields.Time),
		huh.NewInput().Title("Max participants").Value(&fields.MaxParticipants),
		huh.NewInput().Title("Ticket price").Description("Leave empty for a free event").Value(&fields.Price),
		huh.NewInput().Title("Tags").Description("Comma separated").Value(&fields.Tags),
	)
	if err != nil {
		return models.EventInput{}, err
	}
	return fields.Parse()
}

// Profile collects profile edits. Only answered or changed fields are set.
func (f *Forms) Profile(current models.User) (models.ProfileUpdate, error) {
	var up models.ProfileUpdate
	name, bio, location, avatar := current.Name, current.Bio, current.Location, current.Avatar
	interests := strings.Join(current.Interests, ", ")

	if f.headless.IsHeadless() {
		if v, ok := f.field("name"); ok {
			up.Name = &v
		}
		if v, ok := f.field("bio"); ok {
			up.Bio = &v
		}
		if v, ok := f.field("location"); ok {
			up.Location = &v
		}
		if v, ok := f.field("avatar"); ok {
			up.Avatar = &v
		}
		if v, ok := f.field("interests"); ok {
			up.Interests = splitList(v)
		}
		return up, nil
	}

	err := f.theme.runForm(
		huh.NewInput().Title("Name").Value(&name).Validate(required("name")),
		huh.NewText().Title("Bio").Value(&bio),
		huh.NewInput().Title("Location").Value(&location),
		huh.NewInput().Title("Avatar URL").Value(&avatar),
		huh.NewInput().Title("Interests").Description("Comma separated").Value(&interests),
	)
	if err != nil {
		return up, err
	}
	if name != current.Name {
		up.Name = &name
	}
	if bio != current.Bio {
		up.Bio = &bio
	}
	if location != current.Location {
		up.Location = &location
	}
	if avatar != current.Avatar {
		up.Avatar = &avatar
	}
	if list := splitList(interests); strings.Join(list, ",") != strings.Join(current.Interests, ",") {
		up.Interests = list
	}
	return up, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Rating collects a 1-5 rating and a comment.
func (f *Forms) Rating() (int, string, error) {
	ratingText, _ := f.field("rating")
	comment, _ := f.field("comment")

	if f.headless.IsHeadless() {
		if ratingText == "" {
			return 0, "", &ErrHeadlessMissing{Key: "rating"}
		}
		if comment == "" {
			return 0, "", &ErrHeadlessMissing{Key: "comment"}
		}
		n, err := strconv.Atoi(ratingText)
		if err != nil || !models.ValidRating(n) {
			return 0, "", errors.New("rating must be between 1 and 5")
		}
		return n, comment, nil
	}

	rating := 5
	if n, err := strconv.Atoi(ratingText); err == nil && models.ValidRating(n) {
		rating = n
	}
	opts := make([]huh.Option[int], 0, 5)
	for n := 5; n >= 1; n-- {
		opts = append(opts, huh.NewOption(Stars(n), n))
	}
	err := f.theme.runForm(
		huh.NewSelect[int]().Title("Rating").Options(opts...).Value(&rating),
		huh.NewText().Title("Your review").Value(&comment).Validate(required("review")),
	)
	return rating, comment, err
}

// Text collects one free-text value stored under key.
func (f *Forms) Text(key, title string) (string, error) {
	v, ok := f.field(key)
	if ok || f.headless.IsHeadless() {
		if !ok || strings.TrimSpace(v) == "" {
			return "", &ErrHeadlessMissing{Key: key}
		}
		return v, nil
	}
	err := f.theme.runForm(huh.NewText().Title(title).Value(&v).Validate(required(key)))
	return strings.TrimSpace(v), err
}
