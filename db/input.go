package db

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/brunosouza-justauto/crypto-portfolio/config"
	log "github.com/sirupsen/logrus"
)

func getInput(info string) (string, error) {
	if config.Mode() != config.INTERACTIVE_MODE {
		return "", fmt.Errorf("cannot prompt for input outside interactive mode")
	}
	log.Warn(info)
	in := bufio.NewReader(os.Stdin)
	line, err := in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
