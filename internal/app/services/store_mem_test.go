package services

import (
	"context"
	"sort"
	"time"

	"github.com/mertcelik/eduledger/internal/app/models"
	"github.com/mertcelik/eduledger/internal/app/repositories"
	"github.com/mertcelik/eduledger/internal/pkg/apperrors"
)

// memStore is an in-memory repositories.Store used by the service tests. It
// mirrors the constraint behavior of the SQL repositories (unique keys map to
// the same sentinel errors, the balance check rejects overdrafts) and its
// ExecTx runs the callback against a deep copy so a failed transaction leaves
// no trace, matching a rolled-back database transaction.
type memStore struct {
	data *memData
}

type pairKey struct {
	learnerID  int64
	offeringID int64
}

type priceKey struct {
	offeringID int64
	kind       models.PriceKind
}

type memData struct {
	nextID int64

	users        map[int64]*models.User
	usersByEmail map[string]int64

	offerings map[int64]*models.Offering

	licenses      map[int64]*models.License
	licenseByPair map[pairKey]int64

	units       map[pairKey]map[int]*models.UnitProgress
	completions map[pairKey]*models.OfferingCompletion

	credentials         map[int64]*models.Credential
	credentialByLearner map[int64]int64
	entries             map[int64][]*models.CredentialEntry
	commitments         map[string]int64
	prices              map[priceKey]*models.CredentialPrice

	accounts      map[string]*models.Account
	walletByOwner map[int64]string

	settings *models.PlatformSettings

	events []*models.LedgerEvent
}

func newMemStore() *memStore {
	return &memStore{data: &memData{
		nextID:              1,
		users:               map[int64]*models.User{},
		usersByEmail:        map[string]int64{},
		offerings:           map[int64]*models.Offering{},
		licenses:            map[int64]*models.License{},
		licenseByPair:       map[pairKey]int64{},
		units:               map[pairKey]map[int]*models.UnitProgress{},
		completions:         map[pairKey]*models.OfferingCompletion{},
		credentials:         map[int64]*models.Credential{},
		credentialByLearner: map[int64]int64{},
		entries:             map[int64][]*models.CredentialEntry{},
		commitments:         map[string]int64{},
		prices:              map[priceKey]*models.CredentialPrice{},
		accounts:            map[string]*models.Account{},
		walletByOwner:       map[int64]string{},
		settings: &models.PlatformSettings{
			FeeBps:             2000,
			DefaultMintPrice:   50,
			DefaultGrowthPrice: 10,
		},
	}}
}

func (d *memData) allocID() int64 {
	id := d.nextID
	d.nextID++
	return id
}

func (d *memData) clone() *memData {
	c := &memData{
		nextID:              d.nextID,
		users:               map[int64]*models.User{},
		usersByEmail:        map[string]int64{},
		offerings:           map[int64]*models.Offering{},
		licenses:            map[int64]*models.License{},
		licenseByPair:       map[pairKey]int64{},
		units:               map[pairKey]map[int]*models.UnitProgress{},
		completions:         map[pairKey]*models.OfferingCompletion{},
		credentials:         map[int64]*models.Credential{},
		credentialByLearner: map[int64]int64{},
		entries:             map[int64][]*models.CredentialEntry{},
		commitments:         map[string]int64{},
		prices:              map[priceKey]*models.CredentialPrice{},
		accounts:            map[string]*models.Account{},
		walletByOwner:       map[int64]string{},
		events:              append([]*models.LedgerEvent(nil), d.events...),
	}
	for k, v := range d.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range d.usersByEmail {
		c.usersByEmail[k] = v
	}
	for k, v := range d.offerings {
		o := *v
		c.offerings[k] = &o
	}
	for k, v := range d.licenses {
		l := *v
		c.licenses[k] = &l
	}
	for k, v := range d.licenseByPair {
		c.licenseByPair[k] = v
	}
	for k, v := range d.units {
		inner := map[int]*models.UnitProgress{}
		for idx, up := range v {
			u := *up
			inner[idx] = &u
		}
		c.units[k] = inner
	}
	for k, v := range d.completions {
		comp := *v
		c.completions[k] = &comp
	}
	for k, v := range d.credentials {
		cr := *v
		c.credentials[k] = &cr
	}
	for k, v := range d.credentialByLearner {
		c.credentialByLearner[k] = v
	}
	for k, v := range d.entries {
		list := make([]*models.CredentialEntry, len(v))
		for i, e := range v {
			entry := *e
			list[i] = &entry
		}
		c.entries[k] = list
	}
	for k, v := range d.commitments {
		c.commitments[k] = v
	}
	for k, v := range d.prices {
		p := *v
		c.prices[k] = &p
	}
	for k, v := range d.accounts {
		a := *v
		c.accounts[k] = &a
	}
	for k, v := range d.walletByOwner {
		c.walletByOwner[k] = v
	}
	if d.settings != nil {
		s := *d.settings
		c.settings = &s
	}
	return c
}

func (s *memStore) Users() repositories.UserStore             { return memUserStore{s.data} }
func (s *memStore) Offerings() repositories.OfferingStore     { return memOfferingStore{s.data} }
func (s *memStore) Licenses() repositories.LicenseStore       { return memLicenseStore{s.data} }
func (s *memStore) Progress() repositories.ProgressStore      { return memProgressStore{s.data} }
func (s *memStore) Credentials() repositories.CredentialStore { return memCredentialStore{s.data} }
func (s *memStore) Accounts() repositories.AccountStore       { return memAccountStore{s.data} }
func (s *memStore) Settings() repositories.SettingsStore      { return memSettingsStore{s.data} }
func (s *memStore) Events() repositories.EventStore           { return memEventStore{s.data} }

func (s *memStore) ExecTx(ctx context.Context, fn func(repositories.Store) error) error {
	tx := &memStore{data: s.data.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

// --- test fixtures ---

func (s *memStore) addUser(email string, role models.RoleType) *models.User {
	user := &models.User{
		ID:       s.data.allocID(),
		Email:    email,
		FullName: email,
		RoleType: role,
	}
	s.data.users[user.ID] = user
	s.data.usersByEmail[email] = user.ID
	return user
}

func (s *memStore) addWallet(ownerID int64, id string, balance int64) *models.Account {
	account := &models.Account{
		ID:          id,
		OwnerUserID: &ownerID,
		Kind:        models.AccountWallet,
		Balance:     balance,
	}
	s.data.accounts[id] = account
	s.data.walletByOwner[ownerID] = id
	return account
}

func (s *memStore) addTreasury(id string) *models.Account {
	account := &models.Account{
		ID:   id,
		Kind: models.AccountTreasury,
	}
	s.data.accounts[id] = account
	s.data.settings.TreasuryAccountID = id
	return account
}

func (s *memStore) addOffering(creatorID, pricePerPeriod int64, unitCount int) *models.Offering {
	offering := &models.Offering{
		ID:             s.data.allocID(),
		CreatorID:      creatorID,
		Title:          "offering",
		PricePerPeriod: pricePerPeriod,
		Active:         true,
		UnitCount:      unitCount,
	}
	s.data.offerings[offering.ID] = offering
	return offering
}

func (s *memStore) balance(accountID string) int64 {
	return s.data.accounts[accountID].Balance
}

func (s *memStore) eventsOfKind(kind models.EventKind) []*models.LedgerEvent {
	var out []*models.LedgerEvent
	for _, e := range s.data.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// --- stores ---

type memUserStore struct{ d *memData }

func (s memUserStore) Create(ctx context.Context, user *models.User) error {
	if _, exists := s.d.usersByEmail[user.Email]; exists {
		return apperrors.ErrEmailAlreadyExists
	}
	user.ID = s.d.allocID()
	u := *user
	s.d.users[user.ID] = &u
	s.d.usersByEmail[user.Email] = user.ID
	return nil
}

func (s memUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	id, ok := s.d.usersByEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u := *s.d.users[id]
	return &u, nil
}

func (s memUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := s.d.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

type memOfferingStore struct{ d *memData }

func (s memOfferingStore) GetByID(ctx context.Context, id int64) (*models.Offering, error) {
	offering, ok := s.d.offerings[id]
	if !ok {
		return nil, apperrors.ErrOfferingNotFound
	}
	o := *offering
	return &o, nil
}

func (s memOfferingStore) GetAll(ctx context.Context) ([]*models.Offering, error) {
	out := make([]*models.Offering, 0, len(s.d.offerings))
	for _, offering := range s.d.offerings {
		o := *offering
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memOfferingStore) Create(ctx context.Context, offering *models.Offering) error {
	offering.ID = s.d.allocID()
	o := *offering
	s.d.offerings[offering.ID] = &o
	return nil
}

type memLicenseStore struct{ d *memData }

func (s memLicenseStore) Get(ctx context.Context, learnerID, offeringID int64) (*models.License, error) {
	id, ok := s.d.licenseByPair[pairKey{learnerID, offeringID}]
	if !ok {
		return nil, apperrors.ErrLicenseNotFound
	}
	l := *s.d.licenses[id]
	return &l, nil
}

func (s memLicenseStore) Create(ctx context.Context, license *models.License) error {
	key := pairKey{license.LearnerID, license.OfferingID}
	if _, exists := s.d.licenseByPair[key]; exists {
		return apperrors.NewStateConflictError("license already exists for pair")
	}
	license.ID = s.d.allocID()
	l := *license
	s.d.licenses[license.ID] = &l
	s.d.licenseByPair[key] = license.ID
	return nil
}

func (s memLicenseStore) Reinitialize(ctx context.Context, licenseID int64, periods int64, expiresAt, renewedAt time.Time) error {
	license, ok := s.d.licenses[licenseID]
	if !ok {
		return apperrors.ErrLicenseNotFound
	}
	license.PeriodsPurchased = periods
	license.ExpiresAt = expiresAt
	license.Active = true
	license.RenewedAt = renewedAt
	return nil
}

func (s memLicenseStore) Renew(ctx context.Context, licenseID int64, addPeriods int64, expiresAt, renewedAt time.Time) error {
	license, ok := s.d.licenses[licenseID]
	if !ok {
		return apperrors.ErrLicenseNotFound
	}
	license.PeriodsPurchased += addPeriods
	license.ExpiresAt = expiresAt
	license.Active = true
	license.RenewedAt = renewedAt
	return nil
}

func (s memLicenseStore) Deactivate(ctx context.Context, licenseID int64) error {
	license, ok := s.d.licenses[licenseID]
	if !ok {
		return apperrors.ErrLicenseNotFound
	}
	license.Active = false
	return nil
}

type memProgressStore struct{ d *memData }

func (s memProgressStore) InsertUnit(ctx context.Context, progress *models.UnitProgress) error {
	key := pairKey{progress.LearnerID, progress.OfferingID}
	if s.d.units[key] == nil {
		s.d.units[key] = map[int]*models.UnitProgress{}
	}
	if _, exists := s.d.units[key][progress.UnitIndex]; exists {
		return apperrors.ErrUnitAlreadyCompleted
	}
	p := *progress
	s.d.units[key][progress.UnitIndex] = &p
	return nil
}

func (s memProgressStore) GetUnits(ctx context.Context, learnerID, offeringID int64) ([]*models.UnitProgress, error) {
	var out []*models.UnitProgress
	for _, unit := range s.d.units[pairKey{learnerID, offeringID}] {
		u := *unit
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitIndex < out[j].UnitIndex })
	return out, nil
}

func (s memProgressStore) GetCompletion(ctx context.Context, learnerID, offeringID int64) (*models.OfferingCompletion, error) {
	if completion, ok := s.d.completions[pairKey{learnerID, offeringID}]; ok {
		c := *completion
		return &c, nil
	}
	return &models.OfferingCompletion{LearnerID: learnerID, OfferingID: offeringID}, nil
}

func (s memProgressStore) SaveCompletion(ctx context.Context, completion *models.OfferingCompletion) error {
	c := *completion
	s.d.completions[pairKey{completion.LearnerID, completion.OfferingID}] = &c
	return nil
}

type memCredentialStore struct{ d *memData }

func (s memCredentialStore) GetByLearner(ctx context.Context, learnerID int64) (*models.Credential, error) {
	id, ok := s.d.credentialByLearner[learnerID]
	if !ok {
		return nil, apperrors.ErrCredentialNotFound
	}
	c := *s.d.credentials[id]
	return &c, nil
}

func (s memCredentialStore) GetByID(ctx context.Context, id int64) (*models.Credential, error) {
	credential, ok := s.d.credentials[id]
	if !ok {
		return nil, apperrors.ErrCredentialNotFound
	}
	c := *credential
	return &c, nil
}

func (s memCredentialStore) Create(ctx context.Context, credential *models.Credential) error {
	if _, exists := s.d.credentialByLearner[credential.LearnerID]; exists {
		return apperrors.NewStateConflictError("learner already holds a credential")
	}
	credential.ID = s.d.allocID()
	c := *credential
	s.d.credentials[credential.ID] = &c
	s.d.credentialByLearner[credential.LearnerID] = credential.ID
	return nil
}

func (s memCredentialStore) Update(ctx context.Context, credential *models.Credential) error {
	existing, ok := s.d.credentials[credential.ID]
	if !ok {
		return apperrors.ErrCredentialNotFound
	}
	existing.DisplayName = credential.DisplayName
	existing.ContentRef = credential.ContentRef
	existing.LastUpdated = credential.LastUpdated
	existing.LastCommitment = credential.LastCommitment
	return nil
}

func (s memCredentialStore) AppendEntry(ctx context.Context, entry *models.CredentialEntry) error {
	for _, existing := range s.d.entries[entry.CredentialID] {
		if existing.OfferingID == entry.OfferingID {
			return apperrors.ErrOfferingAlreadyEarned
		}
	}
	e := *entry
	s.d.entries[entry.CredentialID] = append(s.d.entries[entry.CredentialID], &e)
	return nil
}

func (s memCredentialStore) GetEntries(ctx context.Context, credentialID int64) ([]*models.CredentialEntry, error) {
	list := s.d.entries[credentialID]
	out := make([]*models.CredentialEntry, len(list))
	for i, entry := range list {
		e := *entry
		out[i] = &e
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s memCredentialStore) SetValidity(ctx context.Context, id int64, valid bool, reason *string) error {
	credential, ok := s.d.credentials[id]
	if !ok {
		return apperrors.ErrCredentialNotFound
	}
	credential.Valid = valid
	credential.RevokedReason = reason
	return nil
}

func (s memCredentialStore) ConsumeCommitment(ctx context.Context, commitment string, learnerID int64, at time.Time) error {
	if _, used := s.d.commitments[commitment]; used {
		return apperrors.ErrCommitmentAlreadyUsed
	}
	s.d.commitments[commitment] = learnerID
	return nil
}

func (s memCredentialStore) GetPriceOverride(ctx context.Context, offeringID int64, kind models.PriceKind) (*models.CredentialPrice, error) {
	if price, ok := s.d.prices[priceKey{offeringID, kind}]; ok {
		p := *price
		return &p, nil
	}
	return nil, nil
}

func (s memCredentialStore) UpsertPriceOverride(ctx context.Context, price *models.CredentialPrice) error {
	p := *price
	s.d.prices[priceKey{price.OfferingID, price.Kind}] = &p
	return nil
}

type memAccountStore struct{ d *memData }

func (s memAccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	account, ok := s.d.accounts[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	a := *account
	return &a, nil
}

func (s memAccountStore) GetWalletByOwner(ctx context.Context, userID int64) (*models.Account, error) {
	id, ok := s.d.walletByOwner[userID]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	a := *s.d.accounts[id]
	return &a, nil
}

func (s memAccountStore) Create(ctx context.Context, account *models.Account) error {
	a := *account
	s.d.accounts[account.ID] = &a
	if account.OwnerUserID != nil && account.Kind == models.AccountWallet {
		s.d.walletByOwner[*account.OwnerUserID] = account.ID
	}
	return nil
}

func (s memAccountStore) AddBalance(ctx context.Context, id string, delta int64) error {
	account, ok := s.d.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	if account.Balance+delta < 0 {
		return apperrors.ErrInsufficientBalance
	}
	account.Balance += delta
	return nil
}

type memSettingsStore struct{ d *memData }

func (s memSettingsStore) Get(ctx context.Context) (*models.PlatformSettings, error) {
	settings := *s.d.settings
	return &settings, nil
}

func (s memSettingsStore) Update(ctx context.Context, settings *models.PlatformSettings) error {
	updated := *settings
	s.d.settings = &updated
	return nil
}

type memEventStore struct{ d *memData }

func (s memEventStore) Insert(ctx context.Context, event *models.LedgerEvent) error {
	s.d.events = append(s.d.events, event)
	return nil
}
