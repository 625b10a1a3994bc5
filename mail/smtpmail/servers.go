// Package smtpmail provides an SMTP-backed implementation of the
// mailauth.MailDispatcher interface using pooled connections across one
// or more relay servers.
package smtpmail

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"
)

// ServerList describes the relay servers and envelope defaults.
type ServerList struct {
	Servers []Server `yaml:"servers"`
	From    string   `yaml:"from"`
	Sender  string   `yaml:"sender"`
	ReplyTo []string `yaml:"replyTo"`
}

// Server is one SMTP relay endpoint.
type Server struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Connections        int    `yaml:"connections"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	AuthData           struct {
		Username string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
	SendTimeout int `yaml:"sendTimeout"`
}

// ReadFromFile loads the server list from a YAML file. Unknown keys are
// rejected so typos in deployment configs surface immediately.
func (sl *ServerList) ReadFromFile(fname string) error {
	yamlFile, err := os.ReadFile(fname)
	if err != nil {
		slog.Error("could not read server config file", slog.String("file", fname), slog.String("error", err.Error()))
		return err
	}
	return yaml.UnmarshalStrict(yamlFile, sl)
}
