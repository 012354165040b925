package email

import (
	"fmt"
	"strings"
)

// SenderConfig agrupa la configuración de transporte.
// Provider selecciona la implementación: "smtp" (default) o "dev".
type SenderConfig struct {
	Provider string
	Host     string
	Port     int
	Username string
	Password string
	TLSMode  string // "auto" | "starttls" | "ssl" | "none"
	// SinkDir es el directorio de salida del dev sink.
	SinkDir string
}

// NewSender construye el Sender según Provider. El switch vive acá para que
// el resto del sistema sea agnóstico del transporte concreto.
func NewSender(cfg SenderConfig) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "smtp":
		if cfg.Host == "" {
			return nil, fmt.Errorf("smtp sender: host is required")
		}
		s := NewSMTPSender(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		if cfg.TLSMode != "" {
			s.TLSMode = cfg.TLSMode
		}
		return s, nil
	case "dev":
		return NewDevSink(cfg.SinkDir), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.Provider)
	}
}
