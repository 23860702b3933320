package rates

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/motemen/go-loghttp"
	log "github.com/sirupsen/logrus"
	"moul.io/http2curl"
)

// newClient builds the resty client the backends share. With debug
// logging on, every request goes out through a transport that logs it
// as a replayable curl command.
func newClient(baseURL string) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	if log.IsLevelEnabled(log.DebugLevel) {
		client.SetTransport(&loghttp.Transport{
			LogRequest: func(req *http.Request) {
				cmd, err := http2curl.GetCurlCommand(req)
				if err != nil {
					log.Debugf("request: %s %s", req.Method, req.URL)
					return
				}
				log.Debugf("request: %s", cmd)
			},
			LogResponse: func(resp *http.Response) {
				log.Debugf("response: %d %s", resp.StatusCode, resp.Request.URL)
			},
		})
	}
	return client
}
