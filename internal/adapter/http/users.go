package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/orgconsole/internal/app"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

type RemoteRoleResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SeatsResponse reports allocation for one hierarchy level.
type SeatsResponse struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Occupied  int    `json:"occupied"`
	Available int    `json:"available"`
}

// UserResponse is a company member.
type UserResponse struct {
	ID               int                 `json:"id"`
	Username         string              `json:"username"`
	FullName         string              `json:"fullName"`
	DocumentID       string              `json:"documentId"`
	Phone            string              `json:"phone,omitempty"`
	Contract         string              `json:"contract,omitempty"`
	Active           bool                `json:"active"`
	Role             *RemoteRoleResponse `json:"role,omitempty"`
	HierarchyName    string              `json:"hierarchyName,omitempty"`
	ContractStart    string              `json:"contractStart,omitempty"`
	ContractEnd      string              `json:"contractEnd,omitempty"`
	SupervisorName   string              `json:"supervisorName,omitempty"`
	ContractedAmount float64             `json:"contractedAmount"`
	PaidAmount       float64             `json:"paidAmount"`
	Balance          float64             `json:"balance"`
}

// ParametersResponse is the reference data of the user management page.
type ParametersResponse struct {
	Roles       []RemoteRoleResponse `json:"roles"`
	Functions   []string             `json:"functions"`
	Hierarchies []SeatsResponse      `json:"hierarchies"`
	Users       []UserResponse       `json:"users"`
}

// MemberResponse is a user placed in a hierarchy node.
type MemberResponse struct {
	NodeID   string `json:"nodeId"`
	NodeName string `json:"nodeName"`
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
}

type ReachableNodesResponse struct {
	Supervisors  []MemberResponse `json:"supervisors"`
	Subordinates []MemberResponse `json:"subordinates"`
}

func toUserResponse(u domain.User) UserResponse {
	resp := UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		FullName:         u.FullName,
		DocumentID:       u.DocumentID,
		Phone:            u.Phone,
		Contract:         u.Contract,
		Active:           u.Active,
		HierarchyName:    u.HierarchyName,
		ContractStart:    u.ContractStart,
		ContractEnd:      u.ContractEnd,
		SupervisorName:   u.SupervisorName,
		ContractedAmount: u.ContractedAmount,
		PaidAmount:       u.PaidAmount,
		Balance:          u.Balance,
	}
	if u.Role != nil {
		resp.Role = &RemoteRoleResponse{ID: u.Role.ID, Name: u.Role.Name}
	}
	return resp
}

func toMemberResponses(members []domain.NodeMember) []MemberResponse {
	out := make([]MemberResponse, len(members))
	for i, m := range members {
		out[i] = MemberResponse(m)
	}
	return out
}

// --- Inputs and outputs ---

type ParametersInput struct {
	SessionInput
	Search string `query:"search" required:"false" doc:"Filter users by name, username or document number"`
}

type ParametersOutput struct {
	Body ParametersResponse
}

type UploadUsersInput struct {
	SessionInput
	Body struct {
		Filename string `json:"filename,omitempty" doc:"Original file name"`
		Content  []byte `json:"content" doc:"CSV file, base64 encoded"`
	}
}

type ReachableNodesInput struct {
	SessionInput
	UserID string `query:"user" required:"false" doc:"User id; defaults to the current actor"`
}

type ReachableNodesOutput struct {
	Body ReachableNodesResponse
}

func registerUsers(api huma.API, svc Services) {
	directory := svc.Directory
	tags := []string{"Users"}

	huma.Register(api, huma.Operation{
		OperationID: "get-user-parameters",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List roles, seat allocation and users of the company",
		Tags:        tags,
	}, func(ctx context.Context, input *ParametersInput) (*ParametersOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}
		params, err := directory.Parameters(ctx, actor)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := ParametersResponse{
			Roles:       make([]RemoteRoleResponse, len(params.Roles)),
			Functions:   params.Functions,
			Hierarchies: make([]SeatsResponse, len(params.Hierarchies)),
		}
		for i, r := range params.Roles {
			resp.Roles[i] = RemoteRoleResponse(r)
		}
		for i, h := range params.Hierarchies {
			resp.Hierarchies[i] = SeatsResponse(h)
		}
		users := app.SearchUsers(params.Users, input.Search)
		resp.Users = make([]UserResponse, len(users))
		for i, u := range users {
			resp.Users[i] = toUserResponse(u)
		}
		return &ParametersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "upload-users-csv",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/csv",
		Summary:       "Bulk-create users from a CSV file",
		Tags:          tags,
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *UploadUsersInput) (*EmptyOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}
		if err := directory.UploadUsersCSV(ctx, actor, input.Body.Filename, input.Body.Content); err != nil {
			return nil, toHumaError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-reachable-nodes",
		Method:      http.MethodGet,
		Path:        "/api/v1/hierarchy/nodes",
		Summary:     "List the supervisors and subordinates of a user",
		Tags:        tags,
	}, func(ctx context.Context, input *ReachableNodesInput) (*ReachableNodesOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}
		nodes, err := directory.ReachableNodes(ctx, actor, input.UserID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ReachableNodesOutput{Body: ReachableNodesResponse{
			Supervisors:  toMemberResponses(nodes.Supervisors),
			Subordinates: toMemberResponses(nodes.Subordinates),
		}}, nil
	})
}
