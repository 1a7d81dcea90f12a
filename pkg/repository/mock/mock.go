// Package mock provides in-memory repository doubles for tests. All repos
// share one state so cross-entity side effects (room flips, cascades) behave
// like the real store.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/predial/vistoria/pkg/models"
	"github.com/predial/vistoria/pkg/repository"
)

var (
	_ repository.UserRepo     = (*mockUserRepo)(nil)
	_ repository.ClientRepo   = (*mockClientRepo)(nil)
	_ repository.BuildingRepo = (*mockBuildingRepo)(nil)
	_ repository.LinkRepo     = (*mockLinkRepo)(nil)
	_ repository.SurveyRepo   = (*mockSurveyRepo)(nil)
	_ repository.RoomRepo     = (*mockRoomRepo)(nil)
	_ repository.IssueRepo    = (*mockIssueRepo)(nil)
)

// Test helpers and mocks
type Mocks struct {
	Users     *mockUserRepo
	Clients   *mockClientRepo
	Buildings *mockBuildingRepo
	Links     *mockLinkRepo
	Surveys   *mockSurveyRepo
	Rooms     *mockRoomRepo
	Issues    *mockIssueRepo
}

func NewMocks() *Mocks {
	st := &state{
		users:     make(map[int64]*models.User),
		clients:   make(map[int64]*models.Client),
		buildings: make(map[int64]*models.Building),
		surveys:   make(map[int64]*models.Survey),
		rooms:     make(map[int64]*models.Room),
		issues:    make(map[int64]*models.Issue),
	}
	return &Mocks{
		Users:     &mockUserRepo{state: st},
		Clients:   &mockClientRepo{state: st},
		Buildings: &mockBuildingRepo{state: st},
		Links:     &mockLinkRepo{state: st},
		Surveys:   &mockSurveyRepo{state: st},
		Rooms:     &mockRoomRepo{state: st},
		Issues:    &mockIssueRepo{state: st},
	}
}

// SeedUser inserts a user and returns it with its assigned ID.
func (m *Mocks) SeedUser(u models.User) *models.User {
	m.Users.mu.Lock()
	defer m.Users.mu.Unlock()
	u.ID = m.Users.id()
	m.Users.users[u.ID] = &u
	return &u
}

// SeedClient inserts a client and returns it with its assigned ID.
func (m *Mocks) SeedClient(c models.Client) *models.Client {
	m.Clients.mu.Lock()
	defer m.Clients.mu.Unlock()
	c.ID = m.Clients.id()
	m.Clients.clients[c.ID] = &c
	return &c
}

// SeedBuilding inserts a building and returns it with its assigned ID.
func (m *Mocks) SeedBuilding(b models.Building) *models.Building {
	m.Buildings.mu.Lock()
	defer m.Buildings.mu.Unlock()
	b.ID = m.Buildings.id()
	m.Buildings.buildings[b.ID] = &b
	return &b
}

// SeedSurvey inserts a survey and returns it with its assigned ID.
func (m *Mocks) SeedSurvey(s models.Survey) *models.Survey {
	m.Surveys.mu.Lock()
	defer m.Surveys.mu.Unlock()
	s.ID = m.Surveys.id()
	m.Surveys.surveys[s.ID] = &s
	return &s
}

// SeedRoom inserts a room and returns it with its assigned ID.
func (m *Mocks) SeedRoom(r models.Room) *models.Room {
	m.Rooms.mu.Lock()
	defer m.Rooms.mu.Unlock()
	r.ID = m.Rooms.id()
	m.Rooms.rooms[r.ID] = &r
	return &r
}

// SeedIssue inserts an issue and returns it with its assigned ID.
func (m *Mocks) SeedIssue(i models.Issue) *models.Issue {
	m.Issues.mu.Lock()
	defer m.Issues.mu.Unlock()
	i.ID = m.Issues.id()
	m.Issues.issues[i.ID] = &i
	return &i
}

type state struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]*models.User
	clients   map[int64]*models.Client
	buildings map[int64]*models.Building
	links     []*models.BuildingClient
	surveys   map[int64]*models.Survey
	rooms     map[int64]*models.Room
	issues    map[int64]*models.Issue
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

type mockUserRepo struct {
	*state
	Err error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	stored := *u
	stored.ID = id
	m.users[id] = &stored
	return id, nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockClientRepo struct {
	*state
	Err error
}

func (m *mockClientRepo) CreateClient(ctx context.Context, c *models.Client) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	stored := *c
	stored.ID = id
	m.clients[id] = &stored
	return id, nil
}

func (m *mockClientRepo) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[id], nil
}

func (m *mockClientRepo) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClientRepo) GetClientByUserID(ctx context.Context, userID int64) (*models.Client, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.UserID != nil && *c.UserID == userID {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockClientRepo) UpdateClient(ctx context.Context, c *models.Client) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c.ID]; !ok {
		return fmt.Errorf("client %d not found", c.ID)
	}
	stored := *c
	m.clients[c.ID] = &stored
	return nil
}

func (m *mockClientRepo) ListClients(ctx context.Context) ([]models.Client, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockBuildingRepo struct {
	*state
	Err error
}

func (m *mockBuildingRepo) CreateBuilding(ctx context.Context, b *models.Building) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	stored := *b
	stored.ID = id
	m.buildings[id] = &stored
	return id, nil
}

func (m *mockBuildingRepo) GetBuildingByID(ctx context.Context, id int64) (*models.Building, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buildings[id], nil
}

func (m *mockBuildingRepo) ListBuildings(ctx context.Context) ([]models.Building, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Building, 0, len(m.buildings))
	for _, b := range m.buildings {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockBuildingRepo) ListBuildingsByName(ctx context.Context) ([]models.Building, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Building, 0, len(m.buildings))
	for _, b := range m.buildings {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type mockLinkRepo struct {
	*state
	Err error
}

func (m *mockLinkRepo) LinkClientToBuilding(ctx context.Context, clientID, buildingID int64) (*models.BuildingClient, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.ClientID == clientID && l.BuildingID == buildingID {
			return l, nil
		}
	}
	link := &models.BuildingClient{ID: m.id(), ClientID: clientID, BuildingID: buildingID}
	m.links = append(m.links, link)
	return link, nil
}

func (m *mockLinkRepo) FindBuildingsForClient(ctx context.Context, clientID int64) ([]models.BuildingClient, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BuildingClient
	for _, l := range m.links {
		if l.ClientID == clientID {
			link := *l
			link.Building = m.buildings[l.BuildingID]
			out = append(out, link)
		}
	}
	return out, nil
}

func (m *mockLinkRepo) FindClientsForBuilding(ctx context.Context, buildingID int64) ([]models.BuildingClient, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BuildingClient
	for _, l := range m.links {
		if l.BuildingID == buildingID {
			link := *l
			link.Client = m.clients[l.ClientID]
			out = append(out, link)
		}
	}
	return out, nil
}

type mockSurveyRepo struct {
	*state
	Err       error
	UpdateErr error
}

func (m *mockSurveyRepo) CreateSurvey(ctx context.Context, s *models.Survey) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	stored := *s
	stored.ID = id
	m.surveys[id] = &stored
	return id, nil
}

func (m *mockSurveyRepo) GetSurveyByID(ctx context.Context, id int64) (*models.Survey, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.surveys[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (m *mockSurveyRepo) UpdateSurvey(ctx context.Context, s *models.Survey) error {
	if m.Err != nil {
		return m.Err
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.surveys[s.ID]; !ok {
		return fmt.Errorf("survey %d not found", s.ID)
	}
	stored := *s
	m.surveys[s.ID] = &stored
	return nil
}

func (m *mockSurveyRepo) DeleteSurvey(ctx context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.surveys[id]; !ok {
		return fmt.Errorf("survey %d not found", id)
	}
	for issueID, i := range m.issues {
		if i.SurveyID == id {
			delete(m.issues, issueID)
		}
	}
	for roomID, r := range m.rooms {
		if r.SurveyID == id {
			delete(m.rooms, roomID)
		}
	}
	delete(m.surveys, id)
	return nil
}

func (m *mockSurveyRepo) ListSurveysByEngineer(ctx context.Context, engineerID int64) ([]models.Survey, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.list(func(s *models.Survey) bool { return s.EngineerID == engineerID }), nil
}

func (m *mockSurveyRepo) ListSurveysByClient(ctx context.Context, clientID int64) ([]models.Survey, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.list(func(s *models.Survey) bool { return s.ClientID == clientID }), nil
}

func (m *mockSurveyRepo) ListAllSurveys(ctx context.Context) ([]models.Survey, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.list(func(*models.Survey) bool { return true }), nil
}

func (m *mockSurveyRepo) list(keep func(*models.Survey) bool) []models.Survey {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Survey
	for _, s := range m.surveys {
		if keep(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SurveyDate > out[j].SurveyDate })
	return out
}

func (m *mockSurveyRepo) CountPendingRooms(ctx context.Context, surveyID int64) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rooms {
		if r.SurveyID == surveyID && r.Status == models.RoomPending {
			n++
		}
	}
	return n, nil
}

func (m *mockSurveyRepo) CountRoomsBySurvey(ctx context.Context, surveyID int64) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rooms {
		if r.SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

func (m *mockSurveyRepo) CountIssuesBySurvey(ctx context.Context, surveyID int64) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, i := range m.issues {
		if i.SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

type mockRoomRepo struct {
	*state
	Err error
}

func (m *mockRoomRepo) CreateRoom(ctx context.Context, r *models.Room) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	stored := *r
	stored.ID = id
	m.rooms[id] = &stored
	return id, nil
}

func (m *mockRoomRepo) CreateRooms(ctx context.Context, surveyID int64, rooms []models.Room) ([]models.Room, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		r.ID = m.id()
		r.SurveyID = surveyID
		stored := r
		m.rooms[r.ID] = &stored
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoomRepo) GetRoomByID(ctx context.Context, id int64) (*models.Room, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *mockRoomRepo) UpdateRoom(ctx context.Context, r *models.Room) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.ID]; !ok {
		return fmt.Errorf("room %d not found", r.ID)
	}
	stored := *r
	m.rooms[r.ID] = &stored
	return nil
}

func (m *mockRoomRepo) DeleteRoom(ctx context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return fmt.Errorf("room %d not found", id)
	}
	for issueID, i := range m.issues {
		if i.RoomID == id {
			delete(m.issues, issueID)
		}
	}
	delete(m.rooms, id)
	return nil
}

func (m *mockRoomRepo) ListRoomsBySurvey(ctx context.Context, surveyID int64) ([]models.Room, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Room
	for _, r := range m.rooms {
		if r.SurveyID == surveyID {
			room := *r
			for _, i := range m.issues {
				if i.RoomID == r.ID {
					room.Issues = append(room.Issues, *i)
				}
			}
			sort.Slice(room.Issues, func(a, b int) bool { return room.Issues[a].ID < room.Issues[b].ID })
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRoomRepo) MarkAllIssuesFixed(ctx context.Context, roomID int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return fmt.Errorf("room %d not found", roomID)
	}
	for _, i := range m.issues {
		if i.RoomID == roomID {
			i.Status = models.IssueFixed
		}
	}
	room.Status = models.RoomInspectedOK
	return nil
}

type mockIssueRepo struct {
	*state
	Err error
}

func (m *mockIssueRepo) CreateIssue(ctx context.Context, i *models.Issue) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	stored := *i
	stored.ID = id
	m.issues[id] = &stored
	if room, ok := m.rooms[i.RoomID]; ok && room.Status != models.RoomHasIssues {
		room.Status = models.RoomHasIssues
	}
	return id, nil
}

func (m *mockIssueRepo) GetIssueByID(ctx context.Context, id int64) (*models.Issue, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.issues[id]; ok {
		copied := *i
		return &copied, nil
	}
	return nil, nil
}

func (m *mockIssueRepo) UpdateIssue(ctx context.Context, i *models.Issue) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[i.ID]; !ok {
		return fmt.Errorf("issue %d not found", i.ID)
	}
	stored := *i
	m.issues[i.ID] = &stored
	return nil
}

func (m *mockIssueRepo) DeleteIssue(ctx context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return fmt.Errorf("issue %d not found", id)
	}
	delete(m.issues, id)
	remaining := 0
	for _, i := range m.issues {
		if i.RoomID == issue.RoomID {
			remaining++
		}
	}
	if remaining == 0 {
		if room, ok := m.rooms[issue.RoomID]; ok && room.Status == models.RoomHasIssues {
			room.Status = models.RoomInspectedOK
		}
	}
	return nil
}

func (m *mockIssueRepo) ListIssuesBySurvey(ctx context.Context, surveyID int64) ([]models.Issue, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Issue
	for _, i := range m.issues {
		if i.SurveyID == surveyID {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if severityRank(out[a].Severity) != severityRank(out[b].Severity) {
			return severityRank(out[a].Severity) < severityRank(out[b].Severity)
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (m *mockIssueRepo) ListIssuesByRoom(ctx context.Context, roomID int64) ([]models.Issue, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Issue
	for _, i := range m.issues {
		if i.RoomID == roomID {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func severityRank(s string) int {
	switch s {
	case models.SeverityCritical:
		return 0
	case models.SeverityHigh:
		return 1
	case models.SeverityMedium:
		return 2
	case models.SeverityLow:
		return 3
	}
	return 4
}
