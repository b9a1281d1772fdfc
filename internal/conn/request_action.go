package conn

import (
	"fmt"
	"net/http"

	"github.com/tobsdb/pcddb/internal/database"
)

type RequestAction string

const (
	// token actions
	RequestActionListTokens RequestAction = "listTokens"
	RequestActionGetToken   RequestAction = "getToken"
	RequestActionTokenTree  RequestAction = "tokenTree"

	// module actions
	RequestActionListModules  RequestAction = "listModules"
	RequestActionModuleUsages RequestAction = "moduleUsages"
	RequestActionModuleTree   RequestAction = "moduleTree"

	// database actions
	RequestActionFingerprint RequestAction = "fingerprint"
)

var VALID_REQUEST_ACTIONS = []RequestAction{
	RequestActionListTokens, RequestActionGetToken, RequestActionTokenTree,
	RequestActionListModules, RequestActionModuleUsages, RequestActionModuleTree,
	RequestActionFingerprint,
}

// The server only ever reads the database; every action is read only.
func (action RequestAction) IsReadOnly() bool { return true }

func ActionHandler(m *database.Manager, action RequestAction, raw []byte) Response {
	switch action {
	case RequestActionListTokens:
		return ListTokensReqHandler(m, raw)
	case RequestActionGetToken:
		return GetTokenReqHandler(m, raw)
	case RequestActionTokenTree:
		return TokenTreeReqHandler(m)
	case RequestActionListModules:
		return ListModulesReqHandler(m, raw)
	case RequestActionModuleUsages:
		return ModuleUsagesReqHandler(m, raw)
	case RequestActionModuleTree:
		return ModuleTreeReqHandler(m, raw)
	case RequestActionFingerprint:
		return FingerprintReqHandler(m)
	default:
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
	}
}
