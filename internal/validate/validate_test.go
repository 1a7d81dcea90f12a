package validate_test

import (
	"context"
	"strings"
	"testing"

	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/apperr"
)

func TestCheck(t *testing.T) {
	v, err := validate.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		schema  string
		body    string
		wantErr bool
	}{
		{"register valid", validate.RegisterRequest, `{"name":"Alice","email":"a@b.c","password":"s3cret1"}`, false},
		{"register short password", validate.RegisterRequest, `{"name":"Alice","email":"a@b.c","password":"abc"}`, true},
		{"register bad role", validate.RegisterRequest, `{"name":"Alice","email":"a@b.c","password":"s3cret1","role":"owner"}`, true},
		{"login missing password", validate.LoginRequest, `{"email":"a@b.c"}`, true},
		{"survey valid", validate.SurveyCreate, `{"building_id":1,"client_id":2}`, false},
		{"survey missing client", validate.SurveyCreate, `{"building_id":1}`, true},
		{"issue bad severity", validate.IssueCreate, `{"room_id":1,"area":"wall","description":"crack","severity":"apocalyptic"}`, true},
		{"issue negative cost", validate.IssueCreate, `{"room_id":1,"area":"wall","description":"crack","estimated_cost":-5}`, true},
		{"building zero floors", validate.BuildingCreate, `{"name":"A","address":"B","construction_company":"C","number_of_floors":0,"number_of_units":1}`, true},
		{"room valid", validate.RoomCreate, `{"survey_id":3,"name":"Kitchen"}`, false},
		{"link missing building", validate.LinkClient, `{"client_email":"a@b.c"}`, true},
		{"not json at all", validate.LoginRequest, `not json`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Check(ctx, tt.schema, []byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a validation error")
				}
				if apperr.KindOf(err) != apperr.Validation {
					t.Fatalf("expected Validation kind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckUnknownSchema(t *testing.T) {
	v, err := validate.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = v.Check(context.Background(), "nope", []byte(`{}`))
	if err == nil || !strings.Contains(err.Error(), "unknown request schema") {
		t.Fatalf("expected unknown schema error, got %v", err)
	}
}
