package banner

import (
	"loadcompose/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

const ascii = `
    __                __                                          
   / /___  ____ _____/ /________  ____ ___  ____  ____  ________ 
  / / __ \/ __ '/ __  / ___/ __ \/ __ '__ \/ __ \/ __ \/ ___/ _ \
 / / /_/ / /_/ / /_/ / /__/ /_/ / / / / / / /_/ / /_/ (__  )  __/
/_/\____/\__,_/\__,_/\___/\____/_/ /_/ /_/ .___/\____/____/\___/ 
                                        /_/                      `

func GetString() string {
	style := lipgloss.DefaultRenderer().NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	return "\n" + style.Render(ascii) + "\n"
}
