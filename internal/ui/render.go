package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/meetly-app/meetly/pkg/models"
)

const defaultWidth = 80

// Renderer turns API records into terminal text.
type Renderer struct {
	theme *Theme

	// Width is the wrap width; zero means 80 columns.
	Width int

	// Now is the clock used for relative times.
	Now func() time.Time
}

// NewRenderer returns a Renderer for theme.
func NewRenderer(theme *Theme) *Renderer {
	return &Renderer{theme: theme, Now: time.Now}
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

func (r *Renderer) width() int {
	if r.Width <= 0 {
		return defaultWidth
	}
	return r.Width
}

func (r *Renderer) cardStyle() lipgloss.Style {
	s := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	if !r.theme.NoColor {
		s = s.BorderForeground(r.theme.Colors.Border)
	}
	return s
}

// Card renders content inside a rounded box with a title.
func (r *Renderer) Card(title, content string) string {
	body := r.theme.primary().Bold(true).Render(title)
	if content != "" {
		body += "\n\n" + content
	}
	return r.cardStyle().Render(body)
}

// SuccessCard renders a check-marked title and detail lines.
func (r *Renderer) SuccessCard(title string, details ...string) string {
	body := r.theme.symSuccess() + " " + title
	if len(details) > 0 {
		body += "\n\n" + strings.Join(details, "\n")
	}
	return r.cardStyle().Render(body)
}

// ErrorCard renders a failure with its message.
func (r *Renderer) ErrorCard(title, msg string) string {
	return r.cardStyle().Render(r.theme.symError() + " " + r.theme.danger().Bold(true).Render(title) + "\n\n" + msg)
}

// KV renders an aligned "key: value" line.
func (r *Renderer) KV(key, value string) string {
	return r.theme.muted().Render(fmt.Sprintf("%-12s", key+":")) + " " + value
}

// Skeleton renders n placeholder lines shown while data loads.
func (r *Renderer) Skeleton(n int) string {
	line := r.theme.muted().Render(strings.Repeat("░", min(r.width()-4, 40)))
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// Empty renders an empty-state line.
func (r *Renderer) Empty(msg string) string {
	return r.theme.muted().Render(msg)
}

// Warning renders a one-line warning.
func (r *Renderer) Warning(msg string) string {
	return r.theme.symWarning() + " " + msg
}

func (r *Renderer) table(headers ...string) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...)
	if !r.theme.NoColor {
		header := r.theme.primary().Bold(true).Padding(0, 1)
		cell := lipgloss.NewStyle().Padding(0, 1)
		t = t.BorderStyle(r.theme.fg(r.theme.Colors.Border)).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return header
				}
				return cell
			})
	} else {
		t = t.StyleFunc(func(int, int) lipgloss.Style { return lipgloss.NewStyle().Padding(0, 1) })
	}
	return t
}

// ShortID trims an id for tables.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// Availability describes whether an event can be joined.
func Availability(ev *models.Event) string {
	switch {
	case !ev.IsApproved:
		return "Pending approval"
	case ev.Status != models.StatusUpcoming:
		return Title(string(ev.Status))
	case ev.IsFull():
		return "Full"
	}
	return "Open"
}

// Seats renders "current/max".
func Seats(ev *models.Event) string {
	return fmt.Sprintf("%d/%d", ev.CurrentParticipants, ev.MaxParticipants)
}

// CapacityBar renders a static fill bar for an event's occupancy.
func (r *Renderer) CapacityBar(ev *models.Event) string {
	opts := []progress.Option{progress.WithWidth(24), progress.WithoutPercentage()}
	if r.theme.NoColor {
		opts = append(opts, progress.WithFillCharacters('#', '.'), progress.WithColorProfile(termenv.Ascii))
	} else {
		opts = append(opts, progress.WithSolidFill(r.theme.Colors.Primary.Dark))
	}
	bar := progress.New(opts...)
	pct := 0.0
	if ev.MaxParticipants > 0 {
		pct = float64(ev.CurrentParticipants) / float64(ev.MaxParticipants)
	}
	return bar.ViewAs(min(pct, 1)) + " " + Seats(ev)
}

// EventTable lists events. Events userID has joined are marked.
func (r *Renderer) EventTable(events []models.Event, userID string) string {
	if len(events) == 0 {
		return r.Empty("No events found.")
	}
	t := r.table("ID", "Title", "Date", "Category", "Seats", "Price", "Status")
	for i := range events {
		ev := &events[i]
		status := Availability(ev)
		if userID != "" && ev.HasParticipant(userID) {
			status = "Joined"
		}
		price := "Free"
		if ev.IsPaid {
			price = Price(ev.Price, "USD")
		}
		t.Row(ShortID(ev.ID), ev.Title, Date(ev.Date, ev.Time), ev.Category, Seats(ev), price, status)
	}
	return t.Render()
}

// EventDetail renders one event with its description.
func (r *Renderer) EventDetail(ev *models.Event, userID string) string {
	lines := []string{
		r.KV("ID", ev.ID),
		r.KV("When", Date(ev.Date, ev.Time)),
		r.KV("Where", ev.Location),
		r.KV("Category", ev.Category),
		r.KV("Host", ev.Host.DisplayName()),
		r.KV("Price", Price(ev.Price, "USD")),
		r.KV("Status", Availability(ev)),
		r.KV("Capacity", r.CapacityBar(ev)),
	}
	if len(ev.Tags) > 0 {
		lines = append(lines, r.KV("Tags", strings.Join(ev.Tags, ", ")))
	}
	if userID != "" && ev.HasParticipant(userID) {
		lines = append(lines, r.theme.symSuccess()+" You are attending")
	}
	if ev.Description != "" {
		lines = append(lines, "", r.Markdown(ev.Description))
	}
	return r.Card(ev.Title, strings.Join(lines, "\n"))
}

// Profile renders a user card.
func (r *Renderer) Profile(u *models.User) string {
	lines := []string{
		r.KV("ID", u.ID),
		r.KV("Email", u.Email),
		r.KV("Role", string(u.Role)),
	}
	if u.Location != "" {
		lines = append(lines, r.KV("Location", u.Location))
	}
	if len(u.Interests) > 0 {
		lines = append(lines, r.KV("Interests", strings.Join(u.Interests, ", ")))
	}
	if !u.IsActive {
		lines = append(lines, r.Warning("Account suspended"))
	}
	if u.Bio != "" {
		lines = append(lines, "", u.Bio)
	}
	return r.Card(u.DisplayName(), strings.Join(lines, "\n"))
}

// Users lists accounts for moderation.
func (r *Renderer) Users(users []models.User) string {
	if len(users) == 0 {
		return r.Empty("No users.")
	}
	t := r.table("ID", "Name", "Email", "Role", "Active")
	for _, u := range users {
		active := "yes"
		if !u.IsActive {
			active = "no"
		}
		t.Row(ShortID(u.ID), u.Name, u.Email, string(u.Role), active)
	}
	return t.Render()
}

// Conversations lists the current user's conversations.
func (r *Renderer) Conversations(convs []models.Conversation, me string) string {
	if len(convs) == 0 {
		return r.Empty("No conversations yet.")
	}
	t := r.table("ID", "With", "Status", "Last message", "Unread")
	for i := range convs {
		c := &convs[i]
		last := ""
		if c.LastMessage != nil {
			last = truncate(c.LastMessage.Content, 32)
		}
		t.Row(ShortID(c.ID), c.Other(me).DisplayName(), Title(string(c.Status)), last, Count(c.UnreadCount))
	}
	return t.Render()
}

// Messages renders a chat transcript, oldest first.
func (r *Renderer) Messages(msgs []models.Message, me string) string {
	if len(msgs) == 0 {
		return r.Empty("No messages yet. Say hello!")
	}
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteByte('\n')
		}
		who := m.Sender.DisplayName()
		style := r.theme.fg(r.theme.Colors.Secondary).Bold(true)
		if m.Sender != nil && m.Sender.ID == me {
			who = "You"
			style = r.theme.primary().Bold(true)
		}
		stamp := r.theme.muted().Render(m.CreatedAt.Local().Format("15:04"))
		fmt.Fprintf(&b, "%s %s %s", stamp, style.Render(who+":"), m.Content)
	}
	return b.String()
}

// Stars renders a 1-5 rating.
func Stars(rating int) string {
	rating = min(max(rating, 0), 5)
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// Reactions renders "👍 3  🎉 1".
func Reactions(counts []models.ReactionCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s %d", c.Emoji, c.Count)
	}
	return strings.Join(parts, "  ")
}

func (r *Renderer) feedbackLine(id string, user *models.User, rating int, text string, reactions []models.ReactionCount, at time.Time) string {
	head := r.theme.muted().Render(ShortID(id)) + " "
	if rating > 0 {
		head += r.theme.warn().Render(Stars(rating)) + " "
	}
	head += lipgloss.NewStyle().Bold(true).Render(user.DisplayName())
	if ago := Ago(at, r.Now()); ago != "" {
		head += " " + r.theme.muted().Render(ago)
	}
	out := head + "\n  " + text
	if len(reactions) > 0 {
		out += "\n  " + Reactions(reactions)
	}
	return out
}

// Reviews renders event or host reviews.
func (r *Renderer) Reviews(reviews []models.Review) string {
	if len(reviews) == 0 {
		return r.Empty("No reviews yet.")
	}
	parts := make([]string, len(reviews))
	for i := range reviews {
		rv := &reviews[i]
		parts[i] = r.feedbackLine(rv.ID, rv.User, rv.Rating, rv.Comment, rv.ReactionCounts(), rv.CreatedAt)
	}
	return strings.Join(parts, "\n\n")
}

// Comments renders an event's comment thread.
func (r *Renderer) Comments(comments []models.Comment) string {
	if len(comments) == 0 {
		return r.Empty("No comments yet.")
	}
	parts := make([]string, len(comments))
	for i := range comments {
		c := &comments[i]
		parts[i] = r.feedbackLine(c.ID, c.User, 0, c.Content, c.ReactionCounts(), c.CreatedAt)
	}
	return strings.Join(parts, "\n\n")
}

// WebsiteReviews renders platform testimonials.
func (r *Renderer) WebsiteReviews(reviews []models.WebsiteReview) string {
	if len(reviews) == 0 {
		return r.Empty("No reviews yet.")
	}
	parts := make([]string, len(reviews))
	for i := range reviews {
		rv := &reviews[i]
		parts[i] = r.feedbackLine(rv.ID, rv.User, rv.Rating, rv.Comment, nil, rv.CreatedAt)
	}
	return strings.Join(parts, "\n\n")
}

// Plans renders subscription plans.
func (r *Renderer) Plans(plans []models.SubscriptionPlan) string {
	if len(plans) == 0 {
		return r.Empty("No plans available.")
	}
	t := r.table("ID", "Plan", "Price", "Days", "Discount", "Features")
	for _, p := range plans {
		t.Row(ShortID(p.ID), p.Name, Price(p.Price, "USD"), Count(p.DurationDays),
			fmt.Sprintf("%g%%", p.DiscountPercent), strings.Join(p.Features, ", "))
	}
	return t.Render()
}

// Subscription renders the current user's subscription.
func (r *Renderer) Subscription(sub *models.UserSubscription) string {
	if sub == nil {
		return r.Empty("You have no subscription.")
	}
	name := "Subscription"
	lines := []string{r.KV("Status", Title(sub.Status))}
	if sub.Plan != nil {
		name = sub.Plan.Name
		lines = append(lines, r.KV("Discount", fmt.Sprintf("%g%% off paid events", sub.Plan.DiscountPercent)))
	}
	lines = append(lines,
		r.KV("Started", sub.StartDate.Format("Jan 2 2006")),
		r.KV("Renews", sub.EndDate.Format("Jan 2 2006")),
	)
	if !sub.Active(r.Now()) {
		lines = append(lines, r.Warning("Not active"))
	}
	return r.Card(name, strings.Join(lines, "\n"))
}

// PaymentIntent summarises a checkout.
func (r *Renderer) PaymentIntent(pi *models.PaymentIntent) string {
	lines := []string{r.KV("Amount", Price(pi.Amount, pi.Currency))}
	if pi.Discount > 0 {
		lines = append(lines,
			r.KV("Original", Price(pi.OriginalAmount, pi.Currency)),
			r.KV("Discount", "-"+Price(pi.Discount, pi.Currency)),
		)
	}
	lines = append(lines, r.KV("Payment", pi.PaymentIntentID))
	if pi.CheckoutURL != "" {
		lines = append(lines, r.KV("Checkout", pi.CheckoutURL))
	}
	return r.Card("Payment", strings.Join(lines, "\n"))
}

// Revenue renders a host's earnings.
func (r *Renderer) Revenue(rev *models.Revenue) string {
	head := r.KV("Total", Price(rev.Total, "USD"))
	if len(rev.Events) == 0 {
		return r.Card("Revenue", head+"\n"+r.Empty("No ticket sales yet."))
	}
	t := r.table("Event", "Tickets", "Amount")
	for _, e := range rev.Events {
		t.Row(e.Title, Count(e.Tickets), Price(e.Amount, "USD"))
	}
	return r.Card("Revenue", head+"\n\n"+t.Render())
}

// AdminStats renders platform totals.
func (r *Renderer) AdminStats(st *models.AdminStats) string {
	return r.Card("Platform", strings.Join([]string{
		r.KV("Users", Count(st.Users)),
		r.KV("Hosts", Count(st.Hosts)),
		r.KV("Events", Count(st.Events)),
		r.KV("Pending", Count(st.PendingEvents)),
		r.KV("Reviews", Count(st.Reviews)),
		r.KV("Subscribers", Count(st.ActiveSubs)),
		r.KV("Revenue", Price(st.TotalRevenue, "USD")),
	}, "\n"))
}

// Counts renders the badge line for unread messages and pending requests.
func (r *Renderer) Counts(unread, pending int, at time.Time) string {
	line := fmt.Sprintf("%s %s  %s %s",
		r.theme.primary().Render("✉"), Plural(unread, "unread message"),
		r.theme.fg(r.theme.Colors.Secondary).Render("⚑"), Plural(pending, "pending request"))
	if !at.IsZero() {
		line += "  " + r.theme.muted().Render(at.Local().Format("15:04:05"))
	}
	return line
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
