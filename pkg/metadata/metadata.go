// Package metadata fetches report parameter descriptions from the Pentaho
// reporting server.
package metadata

import (
	"context"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// Connection holds the credentials the reporting server uses to reach a data
// source.
type Connection struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	DB       string `json:"db"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// ConnectionSettings groups the data sources a report may query.
type ConnectionSettings struct {
	OpenERP  Connection  `json:"openerp"`
	Postgres *Connection `json:"postgres,omitempty"`
}

// Request is the argument of getParameterInfo.
type Request struct {
	// PrptFileContent is the raw report definition; JSON encodes it as base64.
	PrptFileContent    []byte             `json:"prpt_file_content"`
	ConnectionSettings ConnectionSettings `json:"connection_settings"`
}

// Source returns the raw parameter records of a report definition.
type Source interface {
	ParameterInfo(ctx context.Context, req Request) ([]report.RawParamRecord, error)
}

// HostSettings describes how the reporting server reaches the host
// application and, optionally, its database directly.
type HostSettings struct {
	Interface        string
	Port             string
	PostgresHost     string
	PostgresPort     string
	PostgresLogin    string
	PostgresPassword string
}

// Settings builds the connection settings for a database and user. The
// postgres block is present only when host, port, login and password are all
// configured.
func (h HostSettings) Settings(db, login, password string) ConnectionSettings {
	host := h.Interface
	if host == "" {
		host = "localhost"
	}
	cs := ConnectionSettings{
		OpenERP: Connection{Host: host, Port: h.Port, DB: db, Login: login, Password: password},
	}
	if h.PostgresHost != "" && h.PostgresPort != "" && h.PostgresLogin != "" && h.PostgresPassword != "" {
		cs.Postgres = &Connection{
			Host:     h.PostgresHost,
			Port:     h.PostgresPort,
			DB:       db,
			Login:    h.PostgresLogin,
			Password: h.PostgresPassword,
		}
	}
	return cs
}
