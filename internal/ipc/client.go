package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"
)

func newClient() *resty.Client {
	path := SocketPath()

	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", path)
			},
		},
	})

	client.SetBaseURL("http://driftscreen")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "driftscreen")

	return client
}

// SendStatus fetches the running daemon's status over the control socket.
func SendStatus() (*StatusResponse, error) {
	result := StatusResponse{}
	response, err := newClient().R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error fetching status: %s", response.Status())
	}
	return &result, nil
}

// SendStop asks the daemon to exit.
func SendStop() error {
	return post("/stop", nil)
}

// SendNext advances to the next image with the configured transition.
func SendNext() error {
	return post("/next", nil)
}

// SendTrigger runs the named transition effect immediately.
func SendTrigger(effect string) error {
	return post("/trigger", map[string]string{"effect": effect})
}

// SendLoad replaces the daemon's image list.
func SendLoad(images []string) error {
	return post("/load", images)
}

func post(route string, body any) error {
	req := newClient().R()
	if body != nil {
		req.SetBody(body)
	}
	response, err := req.Post(route)
	if err != nil {
		return err
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending %s: %s", route, response.Status())
	}
	return nil
}
