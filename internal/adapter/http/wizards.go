package http

import (
	"bytes"
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/orgconsole/internal/app"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

// RoleResponse is one editable role slot.
type RoleResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NodeResponse is one hierarchy level.
type NodeResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID *int   `json:"parentId,omitempty"`
	Quantity int    `json:"quantity"`
}

// TreeNodeResponse is a hierarchy level with its subtree.
type TreeNodeResponse struct {
	NodeResponse
	Children []TreeNodeResponse `json:"children"`
}

// WizardResponse is the API representation of an onboarding session.
type WizardResponse struct {
	ID                string             `json:"id" doc:"Wizard session id"`
	Stage             string             `json:"stage" doc:"identity, roles, hierarchy or completed"`
	Step              int                `json:"step" doc:"1-based stage number, 0 once completed"`
	CompanyID         string             `json:"companyId,omitempty" doc:"Remote company id, set after stage 1"`
	PendingError      string             `json:"pendingError,omitempty" doc:"Message of the last failed submission"`
	Submitting        bool               `json:"submitting"`
	CompanyName       string             `json:"companyName,omitempty"`
	Color             string             `json:"color,omitempty"`
	LogoFilename      string             `json:"logoFilename,omitempty"`
	Roles             []RoleResponse     `json:"roles"`
	Nodes             []NodeResponse     `json:"nodes"`
	Tree              []TreeNodeResponse `json:"tree"`
	TotalQuantity     int                `json:"totalQuantity"`
	RemainingCapacity int                `json:"remainingCapacity"`
	Actions           []string           `json:"actions" doc:"Events the current stage accepts"`
}

func toNodeResponse(n domain.HierarchyNode) NodeResponse {
	resp := NodeResponse{ID: int(n.ID), Name: n.Name, Quantity: n.Quantity}
	if n.ParentID != nil {
		parent := int(*n.ParentID)
		resp.ParentID = &parent
	}
	return resp
}

func toTreeResponse(nodes []domain.NestedNode) []TreeNodeResponse {
	out := make([]TreeNodeResponse, len(nodes))
	for i, n := range nodes {
		out[i] = TreeNodeResponse{
			NodeResponse: toNodeResponse(n.HierarchyNode),
			Children:     toTreeResponse(n.Children),
		}
	}
	return out
}

func toWizardResponse(v app.WizardView) WizardResponse {
	roles := make([]RoleResponse, len(v.Roles))
	for i, r := range v.Roles {
		roles[i] = RoleResponse{ID: int(r.ID), Name: r.Name}
	}
	nodes := make([]NodeResponse, len(v.Nodes))
	for i, n := range v.Nodes {
		nodes[i] = toNodeResponse(n)
	}
	actions := make([]string, len(v.Actions))
	for i, a := range v.Actions {
		actions[i] = string(a)
	}

	return WizardResponse{
		ID:                v.ID,
		Stage:             string(v.Stage),
		Step:              v.Stage.Number(),
		CompanyID:         v.CompanyID,
		PendingError:      v.PendingError,
		Submitting:        v.Submitting,
		CompanyName:       v.CompanyName,
		Color:             v.Color,
		LogoFilename:      v.LogoFilename,
		Roles:             roles,
		Nodes:             nodes,
		Tree:              toTreeResponse(v.Tree),
		TotalQuantity:     v.TotalQuantity,
		RemainingCapacity: v.RemainingCapacity,
		Actions:           actions,
	}
}

// --- Inputs and outputs ---

type WizardInput struct {
	SessionInput
	ID string `path:"id" doc:"Wizard session id"`
}

type WizardOutput struct {
	Body WizardResponse
}

type SubmitIdentityInput struct {
	SessionInput
	ID   string `path:"id" doc:"Wizard session id"`
	Body struct {
		Name         string `json:"name" doc:"Company name"`
		Color        string `json:"color" doc:"Brand color as #rrggbb"`
		Logo         []byte `json:"logo,omitempty" doc:"Logo image, base64 encoded"`
		LogoFilename string `json:"logoFilename,omitempty" doc:"Original logo file name"`
	}
}

type RoleInput struct {
	SessionInput
	ID     string `path:"id" doc:"Wizard session id"`
	RoleID int    `path:"roleId" doc:"Role slot id"`
}

type RenameRoleInput struct {
	SessionInput
	ID     string `path:"id" doc:"Wizard session id"`
	RoleID int    `path:"roleId" doc:"Role slot id"`
	Body   struct {
		Name string `json:"name" doc:"Role name; blank names are skipped on submission"`
	}
}

type AddNodeInput struct {
	SessionInput
	ID   string `path:"id" doc:"Wizard session id"`
	Body struct {
		Name     string `json:"name" doc:"Level name, unique ignoring case"`
		ParentID *int   `json:"parentId,omitempty" doc:"Parent level id; omit for a root level"`
		Quantity int    `json:"quantity" doc:"Seats at this level, at least 1"`
	}
}

type AddNodeOutput struct {
	Body struct {
		NodeID int `json:"nodeId" doc:"Id of the new level"`
		WizardResponse
	}
}

type NodeInput struct {
	SessionInput
	ID     string `path:"id" doc:"Wizard session id"`
	NodeID int    `path:"nodeId" doc:"Hierarchy level id"`
}

type UpdateQuantityInput struct {
	SessionInput
	ID     string `path:"id" doc:"Wizard session id"`
	NodeID int    `path:"nodeId" doc:"Hierarchy level id"`
	Body   struct {
		Quantity int `json:"quantity" doc:"New seat count, clamped to [1, remaining capacity]"`
	}
}

type TreeTextOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func registerWizards(api huma.API, svc Services) {
	wizards := svc.Wizards
	tags := []string{"Onboarding"}

	// respond resolves the actor, runs fn and renders the resulting view.
	respond := func(ctx context.Context, in SessionInput, fn func(domain.Identity) (app.WizardView, error)) (*WizardOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, in)
		if err != nil {
			return nil, err
		}
		view, err := fn(actor)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &WizardOutput{Body: toWizardResponse(view)}, nil
	}

	huma.Register(api, huma.Operation{
		OperationID:   "start-wizard",
		Method:        http.MethodPost,
		Path:          "/api/v1/wizards",
		Summary:       "Start a company onboarding wizard",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SessionInput) (*WizardOutput, error) {
		return respond(ctx, *input, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.Start(ctx, actor)
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-wizard",
		Method:      http.MethodGet,
		Path:        "/api/v1/wizards/{id}",
		Summary:     "Get a wizard's current state",
		Tags:        tags,
	}, func(ctx context.Context, input *WizardInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.Get(ctx, actor, input.ID)
		})
	})

	huma.Register(api, huma.Operation{
		OperationID:   "discard-wizard",
		Method:        http.MethodDelete,
		Path:          "/api/v1/wizards/{id}",
		Summary:       "Discard a wizard and its unsaved progress",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *WizardInput) (*EmptyOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}
		if err := wizards.Discard(ctx, actor, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &EmptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "wizard-back",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizards/{id}/back",
		Summary:     "Return to the previous stage",
		Tags:        tags,
	}, func(ctx context.Context, input *WizardInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.Back(ctx, actor, input.ID)
		})
	})

	// --- Stage 1 ---

	huma.Register(api, huma.Operation{
		OperationID: "submit-identity",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizards/{id}/identity",
		Summary:     "Create the company from its name, color and logo",
		Tags:        tags,
	}, func(ctx context.Context, input *SubmitIdentityInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.SubmitIdentity(ctx, actor, input.ID, domain.CompanyIdentity{
				Name:         input.Body.Name,
				Color:        input.Body.Color,
				Logo:         input.Body.Logo,
				LogoFilename: input.Body.LogoFilename,
			})
		})
	})

	// --- Stage 2 ---

	huma.Register(api, huma.Operation{
		OperationID: "add-role",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizards/{id}/roles",
		Summary:     "Append an empty role slot",
		Tags:        tags,
	}, func(ctx context.Context, input *WizardInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.AddRole(ctx, actor, input.ID)
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "rename-role",
		Method:      http.MethodPut,
		Path:        "/api/v1/wizards/{id}/roles/{roleId}",
		Summary:     "Rename a role slot",
		Tags:        tags,
	}, func(ctx context.Context, input *RenameRoleInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.RenameRole(ctx, actor, input.ID, domain.RoleID(input.RoleID), input.Body.Name)
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-role",
		Method:      http.MethodDelete,
		Path:        "/api/v1/wizards/{id}/roles/{roleId}",
		Summary:     "Remove a role slot; the last slot is kept",
		Tags:        tags,
	}, func(ctx context.Context, input *RoleInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.RemoveRole(ctx, actor, input.ID, domain.RoleID(input.RoleID))
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "submit-roles",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizards/{id}/roles/submit",
		Summary:     "Send the named roles and continue to the hierarchy",
		Tags:        tags,
	}, func(ctx context.Context, input *WizardInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.SubmitRoles(ctx, actor, input.ID)
		})
	})

	// --- Stage 3 ---

	huma.Register(api, huma.Operation{
		OperationID:   "add-node",
		Method:        http.MethodPost,
		Path:          "/api/v1/wizards/{id}/nodes",
		Summary:       "Add a hierarchy level",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *AddNodeInput) (*AddNodeOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}

		var parent *domain.NodeID
		if input.Body.ParentID != nil {
			p := domain.NodeID(*input.Body.ParentID)
			parent = &p
		}

		view, nodeID, err := wizards.AddNode(ctx, actor, input.ID, input.Body.Name, parent, input.Body.Quantity)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &AddNodeOutput{}
		out.Body.NodeID = int(nodeID)
		out.Body.WizardResponse = toWizardResponse(view)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-node-quantity",
		Method:      http.MethodPatch,
		Path:        "/api/v1/wizards/{id}/nodes/{nodeId}",
		Summary:     "Change a level's seat count",
		Tags:        tags,
	}, func(ctx context.Context, input *UpdateQuantityInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.UpdateQuantity(ctx, actor, input.ID, domain.NodeID(input.NodeID), input.Body.Quantity)
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-node",
		Method:      http.MethodDelete,
		Path:        "/api/v1/wizards/{id}/nodes/{nodeId}",
		Summary:     "Remove a level and everything below it",
		Tags:        tags,
	}, func(ctx context.Context, input *NodeInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.RemoveNode(ctx, actor, input.ID, domain.NodeID(input.NodeID))
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "submit-hierarchy",
		Method:      http.MethodPost,
		Path:        "/api/v1/wizards/{id}/hierarchy/submit",
		Summary:     "Send the hierarchy and complete onboarding",
		Tags:        tags,
	}, func(ctx context.Context, input *WizardInput) (*WizardOutput, error) {
		return respond(ctx, input.SessionInput, func(actor domain.Identity) (app.WizardView, error) {
			return wizards.SubmitHierarchy(ctx, actor, input.ID)
		})
	})

	huma.Register(api, huma.Operation{
		OperationID: "render-tree",
		Method:      http.MethodGet,
		Path:        "/api/v1/wizards/{id}/tree",
		Summary:     "Render the hierarchy as an indented outline",
		Tags:        tags,
	}, func(ctx context.Context, input *WizardInput) (*TreeTextOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := wizards.RenderTree(ctx, actor, input.ID, &buf); err != nil {
			return nil, toHumaError(err)
		}
		return &TreeTextOutput{ContentType: "text/plain; charset=utf-8", Body: buf.Bytes()}, nil
	})
}
