package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tripmarket/marketplace-backend/internal/config"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/pkg/events"
	"github.com/tripmarket/marketplace-backend/pkg/jwt"
	"github.com/tripmarket/marketplace-backend/pkg/mailer"
)

// memDB is an in-memory stand-in for the relational store. Every store method takes
// the single mutex, which plays the role of the row locks and transactions of Postgres.
type memDB struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	providers map[uuid.UUID]*models.ProviderProfile
	trips     map[uuid.UUID]*models.Trip
	dates     map[uuid.UUID]*models.TripDate
	bookings  map[uuid.UUID]*models.Booking
	reviews   []models.Review

	// createBookingErr, when set, fails the booking insert after the reservation
	createBookingErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[uuid.UUID]*models.User{},
		providers: map[uuid.UUID]*models.ProviderProfile{},
		trips:     map[uuid.UUID]*models.Trip{},
		dates:     map[uuid.UUID]*models.TripDate{},
		bookings:  map[uuid.UUID]*models.Booking{},
	}
}

// ---- users ----

type fakeUsers struct{ db *memDB }

func (f fakeUsers) CreateUser(user *models.User, profile *models.ProviderProfile) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == user.Email {
			return database.ErrDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	u := *user
	f.db.users[u.ID] = &u
	if profile != nil {
		if profile.ID == uuid.Nil {
			profile.ID = uuid.New()
		}
		profile.UserID = user.ID
		p := *profile
		f.db.providers[p.ID] = &p
	}
	return nil
}

func (f fakeUsers) GetUserByEmail(email string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f fakeUsers) GetUserByID(id uuid.UUID) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) GetUserByProviderID(providerID uuid.UUID) (*models.User, error) {
	f.db.mu.Lock()
	p, ok := f.db.providers[providerID]
	f.db.mu.Unlock()
	if !ok {
		return nil, database.ErrNotFound
	}
	return f.GetUserByID(p.UserID)
}

// ---- providers ----

type fakeProviders struct{ db *memDB }

func (f fakeProviders) GetByUserID(userID uuid.UUID) (*models.ProviderProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.providers {
		if p.UserID == userID {
			c := *p
			return &c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f fakeProviders) GetByID(id uuid.UUID) (*models.ProviderProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.providers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f fakeProviders) UpdateProfile(profile *models.ProviderProfile) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.providers[profile.ID]
	if !ok {
		return database.ErrNotFound
	}
	p.BusinessName = profile.BusinessName
	p.Bio = profile.Bio
	p.Expertise = profile.Expertise
	p.Location = profile.Location
	p.Languages = profile.Languages
	p.YearsExperience = profile.YearsExperience
	return nil
}

func (f fakeProviders) GetPublicProfile(id uuid.UUID) (*models.PublicProvider, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.providers[id]
	if !ok || !p.IsApproved() {
		return nil, database.ErrNotFound
	}
	return f.db.publicProvider(p), nil
}

func (f fakeProviders) ListApproved(filter models.ProviderFilter) ([]models.PublicProvider, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	matched := []models.PublicProvider{}
	for _, p := range f.db.providers {
		if !p.IsApproved() {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.Expertise != "" && !containsString(p.Expertise, filter.Expertise) {
			continue
		}
		matched = append(matched, *f.db.publicProvider(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].BusinessName < matched[j].BusinessName })
	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// publicProvider must be called with mu held
func (db *memDB) publicProvider(p *models.ProviderProfile) *models.PublicProvider {
	out := &models.PublicProvider{
		ID:              p.ID,
		BusinessName:    p.BusinessName,
		Bio:             p.Bio,
		Expertise:       p.Expertise,
		Location:        p.Location,
		Languages:       p.Languages,
		YearsExperience: p.YearsExperience,
		CreatedAt:       p.CreatedAt,
	}
	if u, ok := db.users[p.UserID]; ok {
		out.FirstName, out.LastName = u.FirstName, u.LastName
	}
	for _, t := range db.trips {
		if t.ProviderID == p.ID && t.Status == models.TripStatusPublished {
			out.PublishedTrips++
		}
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func (f fakeProviders) GetStats(providerID uuid.UUID) (*models.ProviderStats, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stats := &models.ProviderStats{}
	for _, t := range f.db.trips {
		if t.ProviderID == providerID {
			stats.TotalTrips++
		}
	}
	for _, b := range f.db.bookings {
		if f.db.trips[b.TripID].ProviderID != providerID {
			continue
		}
		if b.BookingStatus.Active() {
			stats.ActiveBookings++
		}
		if b.BookingStatus == models.BookingConfirmed || b.BookingStatus == models.BookingCompleted {
			stats.TotalRevenue = stats.TotalRevenue.Add(b.TotalPrice)
			stats.TotalCommission = stats.TotalCommission.Add(b.CommissionAmount)
		}
	}
	return stats, nil
}

// ---- trips ----

type fakeTrips struct{ db *memDB }

func (f fakeTrips) CreateTrip(trip *models.Trip, dates []models.TripDate) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	trip.CreatedAt = time.Now()
	t := *trip
	f.db.trips[t.ID] = &t
	for i := range dates {
		dates[i].TripID = trip.ID
		f.db.insertDateLocked(&dates[i])
	}
	return nil
}

func (f fakeTrips) GetTripByID(id uuid.UUID) (*models.Trip, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.trips[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (f fakeTrips) GetTripWithProvider(id uuid.UUID) (*models.Trip, *models.ProviderSummary, error) {
	trip, err := f.GetTripByID(id)
	if err != nil {
		return nil, nil, err
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p := f.db.providers[trip.ProviderID]
	u := f.db.users[p.UserID]
	return trip, &models.ProviderSummary{
		ID:            p.ID,
		BusinessName:  p.BusinessName,
		Location:      p.Location,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		ApprovalState: p.ApprovalState,
	}, nil
}

func (f fakeTrips) UpdateTrip(trip *models.Trip) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	existing, ok := f.db.trips[trip.ID]
	if !ok || existing.ProviderID != trip.ProviderID {
		return database.ErrNotFound
	}
	c := *trip
	f.db.trips[trip.ID] = &c
	return nil
}

func (f fakeTrips) ListTrips(filter models.TripFilter) ([]models.Trip, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var matched []models.Trip
	for _, t := range f.db.trips {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Destination != "" && !strings.Contains(strings.ToLower(t.Destination), strings.ToLower(filter.Destination)) {
			continue
		}
		if filter.ProviderID != nil && t.ProviderID != *filter.ProviderID {
			continue
		}
		matched = append(matched, *t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f fakeTrips) ListProviderTrips(providerID uuid.UUID) ([]models.ProviderTrip, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.ProviderTrip
	for _, t := range f.db.trips {
		if t.ProviderID != providerID {
			continue
		}
		pt := models.ProviderTrip{Trip: *t}
		for _, b := range f.db.bookings {
			if b.TripID == t.ID {
				pt.BookingCount++
			}
		}
		out = append(out, pt)
	}
	return out, nil
}

// ---- trip dates ----

type fakeDates struct{ db *memDB }

func (db *memDB) insertDateLocked(d *models.TripDate) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	c := *d
	db.dates[c.ID] = &c
}

func (db *memDB) reserveLocked(dateID uuid.UUID, n int) error {
	d, ok := db.dates[dateID]
	if !ok || d.Status != models.TripDateAvailable || d.AvailableSpots < n {
		return database.ErrInsufficientAvailability
	}
	d.AvailableSpots -= n
	if d.AvailableSpots == 0 {
		d.Status = models.TripDateFull
	}
	return nil
}

func (db *memDB) releaseLocked(dateID uuid.UUID, n int) error {
	d, ok := db.dates[dateID]
	if !ok {
		return database.ErrNotFound
	}
	d.AvailableSpots += n
	if d.AvailableSpots > d.Capacity {
		d.AvailableSpots = d.Capacity
	}
	if d.Status == models.TripDateFull {
		d.Status = models.TripDateAvailable
	}
	return nil
}

func (f fakeDates) AddDates(dates []models.TripDate) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i := range dates {
		f.db.insertDateLocked(&dates[i])
	}
	return nil
}

func (f fakeDates) GetDateByID(id uuid.UUID) (*models.TripDate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	d, ok := f.db.dates[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (f fakeDates) ListDates(tripID uuid.UUID, onlyAvailable bool) ([]models.TripDate, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.TripDate{}
	for _, d := range f.db.dates {
		if d.TripID != tripID || (onlyAvailable && d.Status != models.TripDateAvailable) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// ---- bookings ----

type fakeBookings struct{ db *memDB }

func (f fakeBookings) BookingNumberExists(number string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, b := range f.db.bookings {
		if b.BookingNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeBookings) CreateBooking(booking *models.Booking) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	// Snapshot the date so a failed insert leaves inventory untouched
	date, ok := f.db.dates[booking.TripDateID]
	var snapshot models.TripDate
	if ok {
		snapshot = *date
	}

	if err := f.db.reserveLocked(booking.TripDateID, booking.ParticipantCount); err != nil {
		return err
	}
	for _, b := range f.db.bookings {
		if b.BookingNumber == booking.BookingNumber {
			*date = snapshot
			return database.ErrDuplicateBookingNumber
		}
	}
	if f.db.createBookingErr != nil {
		*date = snapshot
		return f.db.createBookingErr
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	b := *booking
	f.db.bookings[b.ID] = &b
	return nil
}

func (db *memDB) detailLocked(b *models.Booking) *models.BookingDetail {
	trip := db.trips[b.TripID]
	date := db.dates[b.TripDateID]
	traveler := db.users[b.TravelerID]
	detail := &models.BookingDetail{
		Booking:    *b,
		TripTitle:  trip.Title,
		ProviderID: trip.ProviderID,
		StartDate:  date.StartDate,
		EndDate:    date.EndDate,
	}
	if traveler != nil {
		detail.TravelerEmail = traveler.Email
		detail.TravelerName = traveler.FullName()
	}
	return detail
}

func (f fakeBookings) GetBookingByID(id uuid.UUID) (*models.BookingDetail, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return f.db.detailLocked(b), nil
}

func (f fakeBookings) GetActiveForTraveler(id, travelerID uuid.UUID) (*models.BookingDetail, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok || b.TravelerID != travelerID || !b.BookingStatus.Active() {
		return nil, database.ErrNotFound
	}
	return f.db.detailLocked(b), nil
}

func (f fakeBookings) Cancel(id uuid.UUID, c database.Cancellation) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return database.ErrStatusChanged
	}
	allowed := false
	for _, s := range c.FromStatuses {
		if b.BookingStatus == s {
			allowed = true
		}
	}
	if !allowed {
		return database.ErrStatusChanged
	}
	at := c.At
	b.BookingStatus = models.BookingCancelled
	b.CancellationReason = c.Reason
	b.CancelledAt = &at
	if c.ProviderResponse != "" {
		b.ProviderResponse = c.ProviderResponse
	}
	return f.db.releaseLocked(b.TripDateID, b.ParticipantCount)
}

func (f fakeBookings) UpdateStatus(id uuid.UUID, from, to models.BookingStatus, response string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok || b.BookingStatus != from {
		return database.ErrStatusChanged
	}
	b.BookingStatus = to
	if response != "" {
		b.ProviderResponse = response
	}
	return nil
}

func (f fakeBookings) list(match func(*models.Booking) bool, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.BookingDetail{}
	for _, b := range f.db.bookings {
		if !match(b) || (filter.Status != "" && b.BookingStatus != filter.Status) {
			continue
		}
		out = append(out, *f.db.detailLocked(b))
	}
	return out, len(out), nil
}

func (f fakeBookings) ListByTraveler(travelerID uuid.UUID, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	return f.list(func(b *models.Booking) bool { return b.TravelerID == travelerID }, filter)
}

func (f fakeBookings) ListByProvider(providerID uuid.UUID, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	return f.list(func(b *models.Booking) bool { return f.db.trips[b.TripID].ProviderID == providerID }, filter)
}

func (f fakeBookings) CompleteFinished(now time.Time) ([]uuid.UUID, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var ids []uuid.UUID
	for _, b := range f.db.bookings {
		if b.BookingStatus == models.BookingConfirmed && f.db.dates[b.TripDateID].EndDate.Before(now) {
			at := now
			b.BookingStatus = models.BookingCompleted
			b.CompletedAt = &at
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (f fakeBookings) HasCompletedBooking(userID, tripID uuid.UUID) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, b := range f.db.bookings {
		if b.TravelerID == userID && b.TripID == tripID && b.BookingStatus == models.BookingCompleted {
			return true, nil
		}
	}
	return false, nil
}

// ---- reviews ----

type fakeReviews struct{ db *memDB }

func (f fakeReviews) CreateReview(review *models.Review) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	trip, ok := f.db.trips[review.TripID]
	if !ok {
		return database.ErrNotFound
	}
	sum := 0
	for _, r := range f.db.reviews {
		if r.UserID == review.UserID && r.TripID == review.TripID {
			return database.ErrDuplicateReview
		}
		if r.TripID == review.TripID {
			sum += r.Rating
		}
	}
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	f.db.reviews = append(f.db.reviews, *review)

	trip.ReviewCount++
	sum += review.Rating
	trip.Rating = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(trip.ReviewCount))).Round(2)
	return nil
}

func (f fakeReviews) ListByTrip(tripID uuid.UUID, page models.Pagination) ([]models.ReviewWithAuthor, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []models.ReviewWithAuthor{}
	for _, r := range f.db.reviews {
		if r.TripID != tripID {
			continue
		}
		u := f.db.users[r.UserID]
		out = append(out, models.ReviewWithAuthor{Review: r, AuthorFirstName: u.FirstName, AuthorLastName: u.LastName})
	}
	return out, len(out), nil
}

// ---- collaborators ----

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "", nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.sent {
		out = append(out, msg.ToEmail)
	}
	return out
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fakeLimiter struct {
	failed int
	reset  int
	block  error
}

func (l *fakeLimiter) CheckLoginRateLimit(string, string) error { return l.block }

func (l *fakeLimiter) RecordFailedLogin(string, string) error {
	l.failed++
	return nil
}

func (l *fakeLimiter) ResetLoginAttempts(string) error {
	l.reset++
	return nil
}

var _ events.Publisher = (*recordingPublisher)(nil)

// ---- environment ----

type testEnv struct {
	db        *memDB
	now       time.Time
	mail      *recordingMailer
	events    *recordingPublisher
	limiter   *fakeLimiter
	logs      *test.Hook
	bookings  *BookingService
	trips     *TripService
	avail     *AvailabilityService
	reviews   *ReviewService
	providers *ProviderService
	auth      *AuthService
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		DefaultCommissionRate: decimal.NewFromInt(15),
		CancellationWindow:    48 * time.Hour,
		NumberMaxAttempts:     10,
	}
}

func newTestEnv() *testEnv {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	env := &testEnv{
		db:      newMemDB(),
		now:     time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
		mail:    &recordingMailer{},
		events:  &recordingPublisher{},
		limiter: &fakeLimiter{},
		logs:    hook,
	}

	users := fakeUsers{env.db}
	providers := fakeProviders{env.db}
	trips := fakeTrips{env.db}
	dates := fakeDates{env.db}
	bookings := fakeBookings{env.db}

	notifier := NewNotificationService(env.mail, env.events, logger)
	notifier.now = func() time.Time { return env.now }

	env.bookings = NewBookingService(bookings, trips, dates, providers, users, notifier, NoopAuditor{}, testBookingConfig(), logger)
	env.bookings.now = func() time.Time { return env.now }
	env.trips = NewTripService(trips, dates, providers)
	env.avail = NewAvailabilityService(trips, dates)
	env.reviews = NewReviewService(fakeReviews{env.db}, trips, bookings, notifier)
	env.providers = NewProviderService(providers)
	env.auth = NewAuthService(users, providers, jwt.NewService("test-secret", time.Hour), env.limiter, NoopAuditor{}, notifier, 4, logger)

	return env
}

// seedProvider stores an approved provider; a nil rate leaves the platform default in effect
func (e *testEnv) seedProvider(rate *decimal.Decimal) *models.ProviderProfile {
	user := &models.User{Email: uuid.NewString() + "@guides.example", FirstName: "Rosa", LastName: "Quispe", Role: models.RoleProvider}
	profile := &models.ProviderProfile{BusinessName: "Andes Treks", ApprovalState: models.ApprovalApproved}
	if rate != nil {
		profile.CommissionRate = decimal.NullDecimal{Decimal: *rate, Valid: true}
	}
	if err := (fakeUsers{e.db}).CreateUser(user, profile); err != nil {
		panic(err)
	}
	return profile
}

func (e *testEnv) seedTraveler() *models.User {
	user := &models.User{Email: uuid.NewString() + "@travel.example", FirstName: "Ana", LastName: "Silva", Role: models.RoleTraveler}
	if err := (fakeUsers{e.db}).CreateUser(user, nil); err != nil {
		panic(err)
	}
	return user
}

// seedTrip stores a published trip with one date starting after the given lead time
func (e *testEnv) seedTrip(providerID uuid.UUID, basePrice int64, capacity int, lead time.Duration) (*models.Trip, *models.TripDate) {
	trip := &models.Trip{
		ProviderID:      providerID,
		Title:           "Inca Trail",
		Destination:     "Cusco, Peru",
		DurationDays:    4,
		MaxParticipants: capacity,
		BasePrice:       decimal.NewFromInt(basePrice),
		CustomizationOptions: models.CustomizationOptions{
			{Name: "porter", PricePerPerson: decimal.RequireFromString("45.50")},
			{Name: "single-tent", PricePerPerson: decimal.NewFromInt(20)},
		},
		Status: models.TripStatusPublished,
	}
	start := e.now.Add(lead)
	dates := []models.TripDate{{
		StartDate:      start,
		EndDate:        start.Add(96 * time.Hour),
		Capacity:       capacity,
		AvailableSpots: capacity,
		Status:         models.TripDateAvailable,
	}}
	if err := (fakeTrips{e.db}).CreateTrip(trip, dates); err != nil {
		panic(err)
	}
	return trip, &dates[0]
}

func (e *testEnv) date(id uuid.UUID) models.TripDate {
	d, err := (fakeDates{e.db}).GetDateByID(id)
	if err != nil {
		panic(err)
	}
	return *d
}
