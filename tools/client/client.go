// Go client for the PCD diagnostic server.
//
// Usage:
//
// serve a resolved database
//
//	```sh
//	PCD_USER=builder PCD_PASS=secret pcd-serve ./Nt32.pcd
//	```
//
// connect and query it
//
//	```go
//	func main() {
//	  c := client.NewPcdClient("ws://localhost:7085", client.PcdClientOptions{Username: "builder", Password: "secret"})
//	  res, err := c.GetToken("gEfiMdePkgTokenSpaceGuid", "PcdDebugPrintErrorLevel")
//	}
//	```
package client

import (
	"fmt"
	"net/url"
	"sync"

	ws "github.com/gorilla/websocket"
)

type (
	PcdClientOptions struct {
		Username string
		Password string
	}

	// PCD diagnostic server client
	PcdClient struct {
		lock sync.Mutex
		// The websocket connection used by the client
		conn *ws.Conn
		// The formatted connection url of the server
		Url     *url.URL
		options PcdClientOptions
		req_id  int
	}
)

func NewPcdClient(urlStr string, options PcdClientOptions) (*PcdClient, error) {
	Url, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}
	if Url.Scheme != "ws" && Url.Scheme != "wss" {
		return nil, fmt.Errorf("%s is not a websocket url", urlStr)
	}
	return &PcdClient{Url: Url, options: options}, nil
}

func (c *PcdClient) Connect() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.connect()
}

func (c *PcdClient) connect() error {
	if c.conn != nil {
		return nil
	}
	conn, _, err := ws.DefaultDialer.Dial(c.Url.String(), nil)
	if err != nil {
		return err
	}

	if c.options.Username != "" {
		err := conn.WriteJSON(map[string]string{
			"username": c.options.Username,
			"password": c.options.Password,
		})
		if err != nil {
			conn.Close()
			return err
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return err
		}
		if string(msg) != "connected" {
			conn.Close()
			return fmt.Errorf("PCD Error: %s", msg)
		}
	}

	Log(LogLevelDebug, "Connected to PCD Server")
	c.conn = conn
	return nil
}

func (c *PcdClient) Disconnect() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.conn == nil {
		return nil
	}
	defer func() { c.conn = nil }()

	err := c.conn.WriteMessage(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, "Disconnect"))
	if err != nil {
		Log(LogLevelError, err.Error())
		return err
	}
	err = c.conn.Close()
	if err != nil {
		Log(LogLevelError, err.Error())
		return err
	}

	Log(LogLevelDebug, "Disconnected from PCD Server")
	return nil
}

type queryAction string

const (
	queryActionListTokens   queryAction = "listTokens"
	queryActionGetToken     queryAction = "getToken"
	queryActionTokenTree    queryAction = "tokenTree"
	queryActionListModules  queryAction = "listModules"
	queryActionModuleUsages queryAction = "moduleUsages"
	queryActionModuleTree   queryAction = "moduleTree"
	queryActionFingerprint  queryAction = "fingerprint"
)

type PcdResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestId int    `json:"__pcd_client_req_id__"`
}

// query sends one request and waits for its response. Requests on one
// client are serialised.
func (c *PcdClient) query(action queryAction, args map[string]any) (PcdResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.connect(); err != nil {
		return PcdResponse{}, err
	}

	c.req_id++
	req := map[string]any{"action": action, "__pcd_client_req_id__": c.req_id}
	for k, v := range args {
		req[k] = v
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return PcdResponse{}, err
	}

	var res PcdResponse
	if err := c.conn.ReadJSON(&res); err != nil {
		return res, err
	}
	if res.RequestId != c.req_id {
		return res, fmt.Errorf("response %d does not match request %d", res.RequestId, c.req_id)
	}
	return res, nil
}

func (c *PcdClient) ListTokens(skip, take int) (PcdResponse, error) {
	return c.query(queryActionListTokens, map[string]any{"skip": skip, "take": take})
}

func (c *PcdClient) GetToken(space, c_name string) (PcdResponse, error) {
	return c.query(queryActionGetToken, map[string]any{"space": space, "cName": c_name})
}

func (c *PcdClient) TokenTree() (PcdResponse, error) {
	return c.query(queryActionTokenTree, nil)
}

func (c *PcdClient) ListModules(filter string, skip, take int) (PcdResponse, error) {
	return c.query(queryActionListModules, map[string]any{"filter": filter, "skip": skip, "take": take})
}

func (c *PcdClient) ModuleUsages(module_key string) (PcdResponse, error) {
	return c.query(queryActionModuleUsages, map[string]any{"module": module_key})
}

func (c *PcdClient) ModuleTree(filter string) (PcdResponse, error) {
	return c.query(queryActionModuleTree, map[string]any{"filter": filter})
}

func (c *PcdClient) Fingerprint() (PcdResponse, error) {
	return c.query(queryActionFingerprint, nil)
}
