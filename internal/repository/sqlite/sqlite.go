package sqlite

import (
	"time"

	"github.com/predial/vistoria/internal/db"
	"github.com/predial/vistoria/pkg/repository"
)

// Repo implements the repository interfaces using the internal DB wrapper.
type Repo struct {
	conn *db.DB
}

// Ensure Repo implements the public interfaces.
var _ repository.UserRepo = (*Repo)(nil)
var _ repository.ClientRepo = (*Repo)(nil)
var _ repository.BuildingRepo = (*Repo)(nil)
var _ repository.LinkRepo = (*Repo)(nil)
var _ repository.SurveyRepo = (*Repo)(nil)
var _ repository.RoomRepo = (*Repo)(nil)
var _ repository.IssueRepo = (*Repo)(nil)

func New(conn *db.DB) *Repo {
	return &Repo{conn: conn}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
