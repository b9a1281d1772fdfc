package conn

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tobsdb/pcddb/internal/database"
	"github.com/tobsdb/pcddb/internal/report"
	"github.com/tobsdb/pcddb/pkg"
)

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__pcd_client_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

func (r Response) Marshal() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		data, _ = json.Marshal(NewErrorResponse(http.StatusInternalServerError, err.Error()))
	}
	return data
}

type PageRequest struct {
	Take int `json:"take"`
	Skip int `json:"skip"`
}

func ListTokensReqHandler(m *database.Manager, raw []byte) Response {
	var req PageRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	records := pkg.Page(report.TokenRecords(m), req.Skip, req.Take)
	return NewResponse(http.StatusOK, fmt.Sprintf("Found %d tokens", len(records)), records)
}

type GetTokenRequest struct {
	TokenSpace string `json:"space"`
	CName      string `json:"cName"`
}

func GetTokenReqHandler(m *database.Manager, raw []byte) Response {
	var req GetTokenRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}
	if len(req.TokenSpace) == 0 || len(req.CName) == 0 {
		return NewErrorResponse(http.StatusBadRequest, "space and cName are required")
	}

	tok, ok := m.GetToken(req.TokenSpace, req.CName)
	if !ok {
		return NewErrorResponse(http.StatusNotFound, "Token not found")
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Found token %s", tok.Key()), report.NewTokenRecord(tok))
}

func TokenTreeReqHandler(m *database.Manager) Response {
	return NewResponse(http.StatusOK, "Rendered token tree", report.ByToken(m))
}

type ModuleFilterRequest struct {
	PageRequest
	Filter string `json:"filter"`
}

func parseModuleFilter(raw []byte) (ModuleFilterRequest, report.ModuleFilter, *Response) {
	var req ModuleFilterRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		res := NewErrorResponse(http.StatusBadRequest, err.Error())
		return req, report.ModuleFilter{}, &res
	}
	filter, err := report.NewModuleFilter(req.Filter)
	if err != nil {
		res := NewErrorResponse(http.StatusBadRequest, err.Error())
		return req, report.ModuleFilter{}, &res
	}
	return req, filter, nil
}

func ListModulesReqHandler(m *database.Manager, raw []byte) Response {
	req, filter, bad := parseModuleFilter(raw)
	if bad != nil {
		return *bad
	}
	records := pkg.Page(report.ModuleRecords(m, filter), req.Skip, req.Take)
	return NewResponse(http.StatusOK, fmt.Sprintf("Found %d modules", len(records)), records)
}

type ModuleUsagesRequest struct {
	// module key, Name|Guid|Version|Arch
	Module string `json:"module"`
}

func ModuleUsagesReqHandler(m *database.Manager, raw []byte) Response {
	var req ModuleUsagesRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	rec, ok := report.GetModuleRecord(m, req.Module)
	if !ok {
		return NewErrorResponse(http.StatusNotFound, "Module not found")
	}
	return NewResponse(http.StatusOK, fmt.Sprintf("Found %d usages in %s", len(rec.Usages), rec.Module.String()), rec)
}

func ModuleTreeReqHandler(m *database.Manager, raw []byte) Response {
	_, filter, bad := parseModuleFilter(raw)
	if bad != nil {
		return *bad
	}
	return NewResponse(http.StatusOK, "Rendered module tree", report.ByModule(m, filter))
}

type FingerprintResponse struct {
	Fingerprint string `json:"fingerprint"`
	Resolved    bool   `json:"resolved"`
	Tokens      int    `json:"tokens"`
}

func FingerprintReqHandler(m *database.Manager) Response {
	fp, err := m.Fingerprint()
	if err != nil {
		return NewErrorResponse(http.StatusInternalServerError, err.Error())
	}
	return NewResponse(http.StatusOK, "Database fingerprint", FingerprintResponse{
		Fingerprint: fmt.Sprintf("%016x", fp),
		Resolved:    m.IsResolved(),
		Tokens:      m.Len(),
	})
}
