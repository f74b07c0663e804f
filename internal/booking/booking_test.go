package booking

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/bookly/internal/api"
	"github.com/julianstephens/bookly/internal/availability"
	"github.com/julianstephens/bookly/internal/cache"
	"github.com/julianstephens/bookly/internal/dates"
	"github.com/julianstephens/bookly/internal/models"
)

// Thursday 2026-10-15 10:00 UTC
var fixedNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

// signedIn is a Viewer with a fixed user; "" means nobody is signed in.
type signedIn string

func (v signedIn) User() (models.User, error) {
	if v == "" {
		return models.User{}, api.ErrNoSession
	}
	return models.User{ID: string(v)}, nil
}

func newTestCache(t *testing.T) *cache.SQLite {
	t.Helper()
	c, err := cache.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func newTestService(t *testing.T) (*Service, *fakeBackend) {
	t.Helper()
	c := newTestCache(t)

	fb := newFakeBackend()
	fb.businesses = []models.Business{
		{ID: "b1", Name: "Fade Factory", Address: models.PlainTextAddress("12 Main St")},
		{ID: "b2", Name: "Curl Up", Address: models.StructuredAddress("3 Rue Haute", "Lyon", "69001")},
		{ID: "b3", Name: "Brush Off"},
	}
	fb.services["b1"] = []models.Service{
		{ID: "cut", BusinessID: "b1", Name: "Cut", Price: 25, DurationMinutes: 30, IsActive: true},
		{ID: "beard", BusinessID: "b1", Name: "Beard trim", Price: 15, DurationMinutes: 15, IsActive: true},
		{ID: "retired", BusinessID: "b1", Name: "Perm", Price: 80, DurationMinutes: 90, IsActive: false},
	}
	fb.shifts["b1"] = []models.Shift{
		{ID: "mon", BusinessID: "b1", DayOfWeek: 1, IsActive: true, StartTime: "09:00", EndTime: "18:00"},
		{ID: "thu", BusinessID: "b1", DayOfWeek: 4, IsActive: true, StartTime: "09:00:00", EndTime: "12:00:00"},
	}

	s := New(fb, c, Options{TTL: time.Minute, Location: time.UTC, WeekStart: time.Monday, Viewer: signedIn("u1")})
	s.now = func() time.Time { return fixedNow }
	keys := 0
	s.newKey = func() string {
		keys++
		return "key-" + string(rune('0'+keys))
	}
	return s, fb
}

func mustDate(t *testing.T, s string) dates.Date {
	t.Helper()
	d, err := dates.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestListBusinessesRatings(t *testing.T) {
	s, fb := newTestService(t)
	fb.reviews["b1"] = []models.Review{{Rating: 5}, {Rating: 4}}
	fb.reviewErrs["b2"] = &api.APIError{Status: 500, Path: "/reviews/business/b2"}

	list, err := s.ListBusinesses(context.Background())
	if err != nil {
		t.Fatalf("ListBusinesses() failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d businesses", len(list))
	}

	want := map[string]struct {
		rating float64
		count  int
	}{
		"b1": {4.5, 2},
		"b2": {0, 0}, // failed review fetch
		"b3": {0, 0},
	}
	for _, b := range list {
		if w := want[b.ID]; b.Rating != w.rating || b.ReviewCount != w.count {
			t.Errorf("%s rating = %v (%d), want %v (%d)", b.ID, b.Rating, b.ReviewCount, w.rating, w.count)
		}
	}

	// Second call is served from the cache.
	if _, err := s.ListBusinesses(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := fb.count("ListBusinesses"); n != 1 {
		t.Errorf("ListBusinesses hit the backend %d times, want 1", n)
	}
}

func TestListBusinessesAbortsOnUnauthorized(t *testing.T) {
	s, fb := newTestService(t)
	fb.reviewErrs["b3"] = api.ErrUnauthorized

	_, err := s.ListBusinesses(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("ListBusinesses() error = %v, want ErrUnauthorized", err)
	}
}

func TestMonthCalendar(t *testing.T) {
	s, _ := newTestService(t)

	grid, err := s.MonthCalendar(context.Background(), "b1", mustDate(t, "2026-10-01"))
	if err != nil {
		t.Fatalf("MonthCalendar() failed: %v", err)
	}
	if len(grid) != 42 {
		t.Fatalf("got %d cells", len(grid))
	}
	for _, c := range grid {
		d := c.Date()
		open := c.IsCurrentMonth && !d.Before(dates.DateOf(fixedNow)) &&
			(d.Weekday() == time.Monday || d.Weekday() == time.Thursday)
		if c.IsSelectable != open {
			t.Errorf("%s selectable = %v, want %v", d, c.IsSelectable, open)
		}
	}
}

func TestAvailableSlots(t *testing.T) {
	s, _ := newTestService(t)

	slots, err := s.AvailableSlots(context.Background(), "b1", mustDate(t, "2026-10-15"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"10:30", "11:00", "11:30"}; !reflect.DeepEqual(slots, want) {
		t.Errorf("today slots = %v, want %v", slots, want)
	}

	slots, err = s.AvailableSlots(context.Background(), "b1", mustDate(t, "2026-10-17"))
	if err != nil || len(slots) != 0 {
		t.Errorf("closed saturday = %v, %v", slots, err)
	}
}

func TestBook(t *testing.T) {
	ctx := context.Background()
	s, fb := newTestService(t)

	// Prime the appointment cache so we can see it invalidated.
	if _, err := s.MyAppointments(ctx); err != nil {
		t.Fatal(err)
	}

	appt, err := s.Book(ctx, BookingRequest{
		BusinessID: "b1",
		ServiceIDs: []string{"cut", "beard", "cut"},
		Date:       mustDate(t, "2026-10-19"),
		Slot:       "09:30",
		Notes:      "  short on the sides ",
	})
	if err != nil {
		t.Fatalf("Book() failed: %v", err)
	}
	if appt.Status != models.StatusPending {
		t.Errorf("status = %q", appt.Status)
	}

	if len(fb.created) != 1 {
		t.Fatalf("created %d appointments", len(fb.created))
	}
	req := fb.created[0]
	if req.AppointmentTime != "2026-10-19T09:30:00Z" {
		t.Errorf("appointmentTime = %q", req.AppointmentTime)
	}
	if req.TotalPrice != 40 || len(req.Services) != 2 {
		t.Errorf("total = %v with %d services, want 40 with 2", req.TotalPrice, len(req.Services))
	}
	if req.Notes != "short on the sides" {
		t.Errorf("notes = %q", req.Notes)
	}
	if fb.idempotency[0] != "key-1" {
		t.Errorf("idempotency key = %q", fb.idempotency[0])
	}

	appts, err := s.MyAppointments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 1 || fb.count("MyAppointments") != 2 {
		t.Errorf("appointments cache not invalidated after booking")
	}
}

func TestPerUserResultsStayWithTheirUser(t *testing.T) {
	ctx := context.Background()
	shared := newTestCache(t)

	anaBackend, benBackend := newFakeBackend(), newFakeBackend()
	anaBackend.appointments["a1"] = models.Appointment{ID: "a1"}
	benBackend.appointments["b1"] = models.Appointment{ID: "b1"}
	ana := New(anaBackend, shared, Options{TTL: time.Hour, Viewer: signedIn("ana")})
	ben := New(benBackend, shared, Options{TTL: time.Hour, Viewer: signedIn("ben")})

	for i := 0; i < 2; i++ {
		got, err := ana.MyAppointments(ctx)
		if err != nil || len(got) != 1 || got[0].ID != "a1" {
			t.Fatalf("ana sees %+v, %v", got, err)
		}
		got, err = ben.MyAppointments(ctx)
		if err != nil || len(got) != 1 || got[0].ID != "b1" {
			t.Fatalf("ben sees %+v, %v", got, err)
		}
	}
	if anaBackend.count("MyAppointments") != 1 || benBackend.count("MyAppointments") != 1 {
		t.Errorf("each user should be fetched once, got %d and %d",
			anaBackend.count("MyAppointments"), benBackend.count("MyAppointments"))
	}

	// Dropping ana's entries leaves ben's cached.
	if err := shared.DeleteOwner(ctx, "ana"); err != nil {
		t.Fatal(err)
	}
	_, _ = ana.MyAppointments(ctx)
	_, _ = ben.MyAppointments(ctx)
	if anaBackend.count("MyAppointments") != 2 || benBackend.count("MyAppointments") != 1 {
		t.Errorf("after DeleteOwner(ana) fetch counts are %d and %d, want 2 and 1",
			anaBackend.count("MyAppointments"), benBackend.count("MyAppointments"))
	}
}

func TestPerUserResultsUncachedWhenSignedOut(t *testing.T) {
	ctx := context.Background()
	fb := newFakeBackend()
	s := New(fb, newTestCache(t), Options{TTL: time.Hour, Viewer: signedIn("")})

	for i := 0; i < 2; i++ {
		if _, err := s.MyAppointments(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if n := fb.count("MyAppointments"); n != 2 {
		t.Errorf("MyAppointments hit the backend %d times, want 2", n)
	}
}

func TestZonelessTimesReadInConfiguredZone(t *testing.T) {
	ctx := context.Background()
	lyon := time.FixedZone("CET", 3600)
	fb := newFakeBackend()
	for _, raw := range []string{
		`{"id": "a1", "appointmentTime": "2026-10-20T09:30:00"}`,
		`{"id": "a2", "appointmentTime": "not a time"}`,
	} {
		var a models.Appointment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			t.Fatal(err)
		}
		fb.appointments[a.ID] = a
	}
	s := New(fb, newTestCache(t), Options{TTL: time.Hour, Location: lyon, Viewer: signedIn("u1")})

	// The second read comes back from the cache.
	for i := 0; i < 2; i++ {
		appts, err := s.MyAppointments(ctx)
		if err != nil {
			t.Fatalf("MyAppointments() failed: %v", err)
		}
		if len(appts) != 2 || appts[0].ID != "a2" || !appts[0].AppointmentTime.IsZero() {
			t.Fatalf("unreadable time should sort first as zero: %+v", appts)
		}
		if want := time.Date(2026, 10, 20, 9, 30, 0, 0, lyon); !appts[1].AppointmentTime.Equal(want) {
			t.Errorf("a1 at %v, want %v", appts[1].AppointmentTime, want)
		}
	}
}

func TestBookRejections(t *testing.T) {
	s, fb := newTestService(t)

	tests := []struct {
		name    string
		req     BookingRequest
		wantErr error
	}{
		{
			name:    "no services",
			req:     BookingRequest{BusinessID: "b1", Date: mustDate(t, "2026-10-19"), Slot: "09:30"},
			wantErr: ErrNoServices,
		},
		{
			name:    "inactive service",
			req:     BookingRequest{BusinessID: "b1", ServiceIDs: []string{"retired"}, Date: mustDate(t, "2026-10-19"), Slot: "09:30"},
			wantErr: ErrUnknownService,
		},
		{
			name:    "closed day",
			req:     BookingRequest{BusinessID: "b1", ServiceIDs: []string{"cut"}, Date: mustDate(t, "2026-10-20"), Slot: "09:30"},
			wantErr: availability.ErrClosed,
		},
		{
			name:    "outside shift",
			req:     BookingRequest{BusinessID: "b1", ServiceIDs: []string{"cut"}, Date: mustDate(t, "2026-10-19"), Slot: "19:00"},
			wantErr: availability.ErrSlotUnavailable,
		},
		{
			name:    "already started today",
			req:     BookingRequest{BusinessID: "b1", ServiceIDs: []string{"cut"}, Date: mustDate(t, "2026-10-15"), Slot: "09:30"},
			wantErr: availability.ErrSlotUnavailable,
		},
		{
			name:    "past date",
			req:     BookingRequest{BusinessID: "b1", ServiceIDs: []string{"cut"}, Date: mustDate(t, "2026-10-12"), Slot: "09:30"},
			wantErr: availability.ErrDateInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Book(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Book() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if len(fb.created) != 0 {
		t.Errorf("%d invalid bookings reached the server", len(fb.created))
	}
}

func TestPrepareQuote(t *testing.T) {
	s, _ := newTestService(t)
	q, err := s.Prepare(context.Background(), BookingRequest{
		BusinessID: "b1",
		ServiceIDs: []string{"cut", "beard"},
		Date:       mustDate(t, "2026-10-15"),
		Slot:       "11:00",
	})
	if err != nil {
		t.Fatalf("Prepare() failed: %v", err)
	}
	if q.Total != 40 || q.Minutes != 45 || q.Start.String() != "11:00" {
		t.Errorf("quote = %+v", q)
	}
}

func TestRescheduleValidatesNewSlot(t *testing.T) {
	ctx := context.Background()
	s, fb := newTestService(t)
	fb.appointments["a1"] = models.Appointment{ID: "a1", BusinessID: "b1", Status: models.StatusConfirmed}
	fb.appointments["a2"] = models.Appointment{ID: "a2", BusinessID: "b1", Status: models.StatusCancelled}

	if _, err := s.Reschedule(ctx, "a1", mustDate(t, "2026-10-20"), "10:00", ""); !errors.Is(err, availability.ErrClosed) {
		t.Errorf("Reschedule() to a closed day error = %v", err)
	}
	if _, err := s.Reschedule(ctx, "a2", mustDate(t, "2026-10-19"), "10:00", ""); err == nil {
		t.Error("cancelled appointment should not be rescheduled")
	}
	if _, err := s.Reschedule(ctx, "a1", mustDate(t, "2026-10-19"), "10:00", "w1"); err != nil {
		t.Fatalf("Reschedule() failed: %v", err)
	}
	if len(fb.reschedules) != 1 || fb.reschedules[0].AppointmentTime != "2026-10-19T10:00:00Z" || fb.reschedules[0].WorkerID != "w1" {
		t.Errorf("reschedule requests = %+v", fb.reschedules)
	}
}

func TestUpdateStatusOnlySendsEnumeratedValues(t *testing.T) {
	ctx := context.Background()
	s, fb := newTestService(t)
	fb.appointments["a1"] = models.Appointment{ID: "a1", BusinessID: "b1", Status: models.StatusPending}

	if _, err := s.UpdateStatus(ctx, "a1", models.AppointmentStatus("no_show")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("UpdateStatus(no_show) error = %v", err)
	}
	if _, err := s.UpdateStatus(ctx, "a1", models.StatusConfirmed); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Cancel(ctx, "a1"); err != nil {
		t.Fatal(err)
	}

	want := []models.AppointmentStatus{models.StatusConfirmed, models.StatusCancelled}
	if !reflect.DeepEqual(fb.statusUpdates, want) {
		t.Errorf("sent statuses %v, want %v", fb.statusUpdates, want)
	}
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	s, fb := newTestService(t)

	added, err := s.ToggleFavorite(ctx, "b2")
	if err != nil || !added {
		t.Fatalf("first toggle = %v, %v; want added", added, err)
	}
	favs, _ := s.Favorites(ctx)
	if len(favs) != 1 || favs[0].BusinessID != "b2" {
		t.Errorf("favorites = %+v", favs)
	}

	added, err = s.ToggleFavorite(ctx, "b2")
	if err != nil || added {
		t.Fatalf("second toggle = %v, %v; want removed", added, err)
	}
	favs, _ = s.Favorites(ctx)
	if len(favs) != 0 || len(fb.favorites) != 0 {
		t.Errorf("favorite not removed: %+v", favs)
	}
}

func TestSetFavorite_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, fb := newTestService(t)

	changed, err := s.SetFavorite(ctx, "b1", true)
	if err != nil || !changed {
		t.Fatalf("add = %v, %v; want changed", changed, err)
	}
	changed, err = s.SetFavorite(ctx, "b1", true)
	if err != nil || changed {
		t.Fatalf("repeat add = %v, %v; want unchanged", changed, err)
	}
	if got := fb.count("AddFavorite"); got != 1 {
		t.Errorf("AddFavorite called %d times, want 1", got)
	}

	changed, err = s.SetFavorite(ctx, "b1", false)
	if err != nil || !changed {
		t.Fatalf("remove = %v, %v; want changed", changed, err)
	}
	changed, err = s.SetFavorite(ctx, "b1", false)
	if err != nil || changed {
		t.Fatalf("repeat remove = %v, %v; want unchanged", changed, err)
	}
	if len(fb.favorites) != 0 {
		t.Errorf("favorites left behind: %+v", fb.favorites)
	}
}

func TestSummarize(t *testing.T) {
	today := mustDate(t, "2026-10-15")
	at := func(day, clock string) time.Time {
		ts, err := dates.ParseTimestamp(day+"T"+clock+":00Z", time.UTC)
		if err != nil {
			t.Fatal(err)
		}
		return ts
	}
	appts := []models.Appointment{
		{ID: "late", Status: models.StatusConfirmed, AppointmentTime: at("2026-10-15", "16:00"), TotalPrice: 30},
		{ID: "early", Status: models.StatusCompleted, AppointmentTime: at("2026-10-15", "09:00"), TotalPrice: 25},
		{ID: "old", Status: models.StatusCompleted, AppointmentTime: at("2026-10-01", "09:00"), TotalPrice: 50},
		{ID: "next", Status: models.StatusPending, AppointmentTime: at("2026-10-20", "09:00"), TotalPrice: 40},
		{ID: "gone", Status: models.StatusCancelled, AppointmentTime: at("2026-10-21", "09:00"), TotalPrice: 40},
		{ID: "weird", Status: models.AppointmentStatus("no_show"), AppointmentTime: at("2026-10-15", "12:00"), TotalPrice: 99},
	}

	d := Summarize(appts, today, time.UTC)

	wantCounts := map[models.AppointmentStatus]int{
		models.StatusConfirmed: 1,
		models.StatusCompleted: 2,
		models.StatusPending:   1,
		models.StatusCancelled: 1,
	}
	if !reflect.DeepEqual(d.Counts, wantCounts) {
		t.Errorf("counts = %v", d.Counts)
	}
	if d.Unknown != 1 {
		t.Errorf("unknown = %d", d.Unknown)
	}
	if d.Revenue != 75 {
		t.Errorf("revenue = %v, want 75", d.Revenue)
	}
	if d.Upcoming != 1 {
		t.Errorf("upcoming = %d, want 1", d.Upcoming)
	}
	var ids []string
	for _, a := range d.Today {
		ids = append(ids, a.ID)
	}
	if want := []string{"early", "weird", "late"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("today = %v, want %v", ids, want)
	}
}

func TestSetShift(t *testing.T) {
	ctx := context.Background()
	s, fb := newTestService(t)

	// Warm the shifts cache.
	if _, err := s.Shifts(ctx, "b1"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SetShift(ctx, ShiftChange{BusinessID: "b1", DayOfWeek: 1, Start: "08:00", End: "17:00", Active: true}); err != nil {
		t.Fatalf("update Monday: %v", err)
	}
	if in, ok := fb.shiftsUpdated["mon"]; !ok || in.StartTime != "08:00" {
		t.Errorf("monday update = %+v", fb.shiftsUpdated)
	}

	if _, err := s.SetShift(ctx, ShiftChange{BusinessID: "b1", DayOfWeek: 5, Start: "22:00", End: "02:00", Active: true}); err != nil {
		t.Fatalf("create Friday: %v", err)
	}
	if len(fb.shiftsCreated) != 1 || fb.shiftsCreated[0].DayOfWeek != 5 {
		t.Errorf("created = %+v", fb.shiftsCreated)
	}

	for _, bad := range []ShiftChange{
		{BusinessID: "b1", DayOfWeek: 0, Start: "09:00", End: "17:00"},
		{BusinessID: "b1", DayOfWeek: 8, Start: "09:00", End: "17:00"},
		{BusinessID: "b1", DayOfWeek: 2, Start: "09:00", End: "09:00"},
		{BusinessID: "b1", DayOfWeek: 2, Start: "nine", End: "17:00"},
	} {
		if _, err := s.SetShift(ctx, bad); err == nil {
			t.Errorf("SetShift(%+v) should fail", bad)
		}
	}

	// Cache was dropped, so the next read reaches the backend again.
	before := fb.count("ListShifts")
	if _, err := s.Shifts(ctx, "b1"); err != nil {
		t.Fatal(err)
	}
	if fb.count("ListShifts") != before+1 {
		t.Error("shift cache not invalidated")
	}
}

func TestOwnerServiceValidation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.CreateService(ctx, models.ServiceInput{BusinessID: "b1", Name: "", Price: 10, DurationMinutes: 30}); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := s.CreateService(ctx, models.ServiceInput{BusinessID: "b1", Name: "Wash", Price: 10, DurationMinutes: 0}); err == nil {
		t.Error("zero duration accepted")
	}

	svc, err := s.CreateService(ctx, models.ServiceInput{BusinessID: "b1", Name: "Wash", Price: 10, DurationMinutes: 20, IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	active, err := s.ActiveServices(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, a := range active {
		if a.ID == svc.ID {
			found = true
		}
	}
	if !found {
		t.Error("new service missing from active list")
	}
}
