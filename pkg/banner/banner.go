package banner

import (
	"fmt"

	"workstream/pkg/config"
)

const banner = `
██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗███████╗████████╗██████╗ ███████╗ █████╗ ███╗   ███╗
██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝██╔════╝╚══██╔══╝██╔══██╗██╔════╝██╔══██╗████╗ ████║
██║ █╗ ██║██║   ██║██████╔╝█████╔╝ ███████╗   ██║   ██████╔╝█████╗  ███████║██╔████╔██║
██║███╗██║██║   ██║██╔══██╗██╔═██╗ ╚════██║   ██║   ██╔══██╗██╔══╝  ██╔══██║██║╚██╔╝██║
╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗███████║   ██║   ██║  ██║███████╗██║  ██║██║ ╚═╝ ██║
 ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝   ╚═╝   ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝
`

// Print writes the startup banner and a short production checklist.
func Print(cfg *config.Config, addr, dbPath, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}

	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/auth/register' -d '{\"email\":\"a@b.co\",\"password\":\"secret1\",\"name_first\":\"Ada\",\"name_last\":\"L\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/v1/channels/listall?token=<token>'\n", addr)

	fmt.Println("\n== Production? ================================================")
	if cfg == nil {
		return
	}
	if len(cfg.Security.APIKeys.Backend) > 0 {
		fmt.Printf("- Backend API keys: OK (%d)\n", len(cfg.Security.APIKeys.Backend))
	} else {
		fmt.Println("- Backend API keys: MISSING (required for backend services)")
	}
	if len(cfg.Security.APIKeys.Admin) > 0 {
		fmt.Printf("- Admin API keys: OK (%d)\n", len(cfg.Security.APIKeys.Admin))
	} else {
		fmt.Println("- Admin API keys: MISSING (required for admin tooling)")
	}
	if cfg.Security.TokenSecret != "" {
		fmt.Println("- Token secret: configured")
	} else {
		fmt.Println("- Token secret: MISSING (set WORKSTREAM_TOKEN_SECRET)")
	}
	if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
	if cfg.Storage.SealKeyHex != "" {
		fmt.Println("- Snapshot sealing: enabled")
	} else {
		fmt.Println("- Snapshot sealing: disabled")
	}
	if cfg.Maintenance.Enabled {
		cron := cfg.Maintenance.Cron
		if cron == "" {
			cron = "0 2 * * *"
		}
		fmt.Printf("- Checkpoints: enabled (cron=%s)\n", cron)
	} else {
		fmt.Println("- Checkpoints: disabled")
	}

	fmt.Println("\n== Logs ======================================================")
}
