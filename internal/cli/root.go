package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/availability"
	"github.com/julianstephens/bookly/internal/booking"
	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/config"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/keyring"
	"github.com/julianstephens/bookly/internal/models"
	"github.com/julianstephens/bookly/internal/session"
)

type Context struct {
	Ctx     context.Context
	Config  *config.Config
	Session *session.Session
	Client  *api.Client
	Booking *booking.Service
	Cache   cache.Cache
	Out     io.Writer
}

// NewContext wires the session, API client and booking service for cfg.
func NewContext(ctx context.Context, cfg *config.Config) (*Context, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	c, err := cache.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sess := session.New(keyring.New(), c)
	client := api.NewClient(api.Options{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, sess, api.WithUnauthorizedHandler(sess.HandleUnauthorized))

	svc := booking.New(client, c, booking.Options{
		TTL:       cfg.CacheTTL,
		Location:  loc,
		WeekStart: availability.ParseWeekStart(cfg.WeekStart),
		Viewer:    sess,
	})

	return &Context{
		Ctx:     ctx,
		Config:  cfg,
		Session: sess,
		Client:  client,
		Booking: svc,
		Cache:   c,
		Out:     os.Stdout,
	}, nil
}

func (c *Context) Close() error {
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}

func (c *Context) Print(args ...interface{}) {
	fmt.Fprint(c.Out, args...)
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// RequireOwner fails unless the signed-in user owns a business.
func (c *Context) RequireOwner() (models.User, error) {
	u, err := c.Session.User()
	if err != nil {
		return models.User{}, err
	}
	if !u.IsOwner() {
		return u, fmt.Errorf("this command is for business owners (signed in as %s)", u.Role)
	}
	return u, nil
}

// ParseDate accepts YYYY-MM-DD, "today" and "tomorrow". Relative words are
// resolved in the configured timezone.
func (c *Context) ParseDate(s string) (dates.Date, error) {
	today := dates.DateOf(c.Booking.Now())
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	}
	return dates.ParseDate(s)
}

// ParseMonth accepts YYYY-MM or an empty string for the current month.
func (c *Context) ParseMonth(s string) (dates.Date, error) {
	if strings.TrimSpace(s) == "" {
		return dates.DateOf(c.Booking.Now()).FirstOfMonth(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return dates.Date{}, fmt.Errorf("invalid month %q (expected YYYY-MM)", s)
	}
	return dates.NewDate(t.Year(), t.Month(), 1), nil
}

var isoDays = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

// ParseISOWeekday parses a weekday name or a number 1 (Monday) to 7 (Sunday).
func ParseISOWeekday(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if d, ok := isoDays[s]; ok {
		return d, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 7 {
		return n, nil
	}
	return 0, fmt.Errorf("invalid weekday: %s", s)
}

// ISOWeekdayName is the inverse of ParseISOWeekday.
func ISOWeekdayName(d int) string {
	if d < 1 || d > 7 {
		return "?"
	}
	return time.Weekday(d % 7).String()
}

func FormatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

func FormatRating(b models.Business) string {
	if b.ReviewCount == 0 {
		return "no reviews"
	}
	return fmt.Sprintf("★ %.1f (%d)", b.Rating, b.ReviewCount)
}

// FormatAppointment renders a one-line summary in loc.
func FormatAppointment(a models.Appointment, loc *time.Location) string {
	when := "unscheduled"
	if !a.AppointmentTime.IsZero() {
		when = a.AppointmentTime.In(loc).Format("Mon 2006-01-02 15:04")
	}
	where := a.BusinessID
	if a.Business != nil && a.Business.Name != "" {
		where = a.Business.Name
	}
	var names []string
	for _, s := range a.Services {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	line := fmt.Sprintf("%s  %-10s  %s  %s", when, a.Status.Label(), where, FormatPrice(a.TotalPrice))
	if len(names) > 0 {
		line += "  (" + strings.Join(names, ", ") + ")"
	}
	return line
}
