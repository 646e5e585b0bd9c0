package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

type roleRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type seatsRecord struct {
	Nombre      string `json:"nombre"`
	Plazas      int    `json:"plazas"`
	Ocupadas    int    `json:"ocupadas"`
	Disponibles int    `json:"disponibles"`
}

type userRecord struct {
	ID                   int          `json:"id"`
	Username             string       `json:"username"`
	NombreCompleto       string       `json:"nombreCompleto"`
	Cedula               string       `json:"cedula"`
	Telefono             string       `json:"telefono"`
	Contrato             string       `json:"contrato"`
	Active               bool         `json:"active"`
	Role                 *roleRecord  `json:"role"`
	HierarchyNode        *seatsRecord `json:"hierarchyNode"`
	FechaInicioContrato  string       `json:"fechaInicioContrato"`
	FechaTerminoContrato string       `json:"fechaTerminoContrato"`
	NombreSupervisor     string       `json:"nombreSupervisor"`
	ValorContratado      float64      `json:"valorContratado"`
	Pagado               float64      `json:"pagado"`
	Saldo                float64      `json:"saldo"`
}

type parametersResponse struct {
	Roles              []roleRecord  `json:"roles"`
	FunctionsAvailable []string      `json:"functionsAvailable"`
	Hierarchies        []seatsRecord `json:"hierarchies"`
	Users              []userRecord  `json:"users"`
}

type nodeRecord struct {
	ID             flexID `json:"id"`
	Name           string `json:"name"`
	IDUser         flexID `json:"idUser"`
	NombreCompleto string `json:"nombreCompleto"`
}

type reachableResponse struct {
	Supervisores []nodeRecord `json:"supervisores"`
	Subordinados []nodeRecord `json:"subordinados"`
}

// UserParameters fetches roles, seat allocation and users of a company.
func (c *Client) UserParameters(ctx context.Context, actor domain.Identity, companyID string) (domain.UserParameters, error) {
	r := request{method: http.MethodGet, path: "/user/parameters/" + url.PathEscape(companyID)}

	var out parametersResponse
	if err := c.do(ctx, actor, r, &out); err != nil {
		return domain.UserParameters{}, err
	}

	params := domain.UserParameters{
		Roles:       make([]domain.RemoteRole, len(out.Roles)),
		Functions:   out.FunctionsAvailable,
		Hierarchies: make([]domain.Seats, len(out.Hierarchies)),
		Users:       make([]domain.User, len(out.Users)),
	}
	for i, role := range out.Roles {
		params.Roles[i] = domain.RemoteRole{ID: role.ID, Name: role.Name}
	}
	for i, h := range out.Hierarchies {
		params.Hierarchies[i] = toSeats(h)
	}
	for i, u := range out.Users {
		params.Users[i] = toUser(u)
	}
	return params, nil
}

func toSeats(h seatsRecord) domain.Seats {
	return domain.Seats{Name: h.Nombre, Total: h.Plazas, Occupied: h.Ocupadas, Available: h.Disponibles}
}

func toUser(u userRecord) domain.User {
	user := domain.User{
		ID:               u.ID,
		Username:         u.Username,
		FullName:         u.NombreCompleto,
		DocumentID:       u.Cedula,
		Phone:            u.Telefono,
		Contract:         u.Contrato,
		Active:           u.Active,
		ContractStart:    u.FechaInicioContrato,
		ContractEnd:      u.FechaTerminoContrato,
		SupervisorName:   u.NombreSupervisor,
		ContractedAmount: u.ValorContratado,
		PaidAmount:       u.Pagado,
		Balance:          u.Saldo,
	}
	if u.Role != nil {
		user.Role = &domain.RemoteRole{ID: u.Role.ID, Name: u.Role.Name}
	}
	if u.HierarchyNode != nil {
		user.HierarchyName = u.HierarchyNode.Nombre
	}
	return user
}

// UploadUsersCSV posts a bulk user file as the fileContent part.
func (c *Client) UploadUsersCSV(ctx context.Context, actor domain.Identity, filename string, content []byte) error {
	form := (&multipartForm{}).file("fileContent", filename, content)
	return c.do(ctx, actor, request{method: http.MethodPost, path: "/user/upload-csv", form: form}, nil)
}

// ReachableNodes fetches the supervisors and subordinates of a user.
func (c *Client) ReachableNodes(ctx context.Context, actor domain.Identity, userID string) (domain.ReachableNodes, error) {
	r := request{method: http.MethodGet, path: "/hierarchy/nodes/user/" + url.PathEscape(userID)}

	var out reachableResponse
	if err := c.do(ctx, actor, r, &out); err != nil {
		return domain.ReachableNodes{}, err
	}
	return domain.ReachableNodes{
		Supervisors:  toMembers(out.Supervisores),
		Subordinates: toMembers(out.Subordinados),
	}, nil
}

func toMembers(records []nodeRecord) []domain.NodeMember {
	members := make([]domain.NodeMember, len(records))
	for i, r := range records {
		members[i] = domain.NodeMember{
			NodeID:   string(r.ID),
			NodeName: r.Name,
			UserID:   string(r.IDUser),
			FullName: r.NombreCompleto,
		}
	}
	return members
}
