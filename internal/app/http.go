package app

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/fantasy-league-activation/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-league-activation/internal/interfaces/lambdaapi"
	"github.com/riskibarqy/fantasy-league-activation/internal/metrics"
)

func NewRouter(c *Container) http.Handler {
	handler := httpapi.NewHandler(c.Activation, c.Views, c.Refresh, c.Logger)

	routerCfg := httpapi.RouterConfig{
		CORSAllowedOrigins: c.Config.CORSAllowedOrigins,
		InternalJobToken:   c.Config.InternalJobToken,
	}
	if c.Gatherer != nil {
		routerCfg.Metrics = metrics.Handler(c.Gatherer)
	}
	return httpapi.NewRouter(handler, c.Logger, routerCfg)
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	server := &http.Server{
		Addr:         c.Config.HTTPAddr,
		Handler:      NewRouter(c),
		ReadTimeout:  c.Config.ReadTimeout,
		WriteTimeout: c.Config.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func NewLambdaHandler(c *Container) *lambdaapi.Handler {
	return lambdaapi.NewHandler(c.Activation, c.Views, c.Logger)
}
