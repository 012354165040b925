package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("L2G_URL", "http://localhost:8080")
		token   = envOr("L2G_TOKEN", "")
		out     = envOr("L2G_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "l2g",
		Short: "CLI admin para Learn2Grow (vía /api/v1/admin)",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base de la API (env L2G_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Access token de admin (env L2G_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}
	// Los flags se resuelven recién en ejecución.
	sync := func() {
		cl.BaseURL, cl.Token, cl.OutFormat = baseURL, token, out
	}

	// login: obtiene un token sin necesitar uno previo
	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login y mostrar el access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			body, _ := json.Marshal(map[string]string{
				"email":    loginEmail,
				"password": loginPassword,
			})
			status, resp, err := cl.do("POST", "/api/v1/auth/login", body)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("login falló: status=%d body=%s", status, string(resp))
			}
			cl.print(status, resp)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	// requests
	requestsCmd := &cobra.Command{
		Use:   "requests",
		Short: "Solicitudes de recipient",
	}

	var listStatus string
	var listLimit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar solicitudes",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			path := fmt.Sprintf("/api/v1/admin/requests?limit=%d", listLimit)
			if listStatus != "" {
				path += "&status=" + listStatus
			}
			status, resp, err := cl.do("GET", path, nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}
	listCmd.Flags().StringVar(&listStatus, "status", "", "pending|approved|rejected")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Máximo de resultados")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Mostrar una solicitud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			status, resp, err := cl.do("GET", "/api/v1/admin/requests/"+args[0], nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	var reviewStatus, reviewNotes string
	reviewCmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Aprobar o rechazar una solicitud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			body, _ := json.Marshal(map[string]string{
				"status": reviewStatus,
				"notes":  reviewNotes,
			})
			status, resp, err := cl.do("POST", "/api/v1/admin/requests/"+args[0]+"/review", body)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}
	reviewCmd.Flags().StringVar(&reviewStatus, "status", "", "approved|rejected")
	reviewCmd.Flags().StringVar(&reviewNotes, "notes", "", "Notas para el email de rechazo/verificación")
	_ = reviewCmd.MarkFlagRequired("status")

	var resendKind string
	var resendForce bool
	resendCmd := &cobra.Command{
		Use:   "resend <id>",
		Short: "Re-enviar una notificación",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			body, _ := json.Marshal(map[string]any{
				"kind":  resendKind,
				"force": resendForce,
			})
			status, resp, err := cl.do("POST", "/api/v1/admin/requests/"+args[0]+"/resend", body)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}
	resendCmd.Flags().StringVar(&resendKind, "kind", "", "confirmation|verification|approval|rejection (vacío = según estado)")
	resendCmd.Flags().BoolVar(&resendForce, "force", false, "Ignorar flags ya seteados")

	requestsCmd.AddCommand(listCmd, getCmd, reviewCmd, resendCmd)

	// notify
	var notifyForce bool
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Motor de notificaciones",
	}
	notifyRunCmd := &cobra.Command{
		Use:   "run",
		Short: "Disparar un pase completo de notificaciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			sync()
			body, _ := json.Marshal(map[string]any{"force": notifyForce})
			status, resp, err := cl.do("POST", "/api/v1/admin/notify/run", body)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("notify run falló: status=%d body=%s", status, string(resp))
			}
			cl.print(status, resp)
			return nil
		},
	}
	notifyRunCmd.Flags().BoolVar(&notifyForce, "force", false, "Re-enviar ignorando flags")
	notifyCmd.AddCommand(notifyRunCmd)

	root.AddCommand(loginCmd, requestsCmd, notifyCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
