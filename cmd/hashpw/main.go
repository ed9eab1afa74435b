package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"wedding-guest-list/internal/service"
	"wedding-guest-list/pkg/logger"

	"go.uber.org/zap"
)

// hashpw reads a password from stdin and prints the bcrypt hash to put
// under users in the config file.
func main() {
	log := logger.WithComponent("hashpw")

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		log.Fatal("Failed to read password", zap.Error(err))
	}
	password = strings.TrimRight(password, "\r\n")
	if password == "" {
		log.Fatal("Empty password")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}
	fmt.Println(hash)
}
