// Command create-user registers a user from the command line and prints the
// generated password once. It is the only way to create the first admin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"useradmin/internal/config"
	"useradmin/internal/database"
	"useradmin/internal/repositories"
	"useradmin/internal/services"
	"useradmin/internal/validation"
	applogger "useradmin/pkg/logger"
	"useradmin/pkg/rabbitmq"
)

type options struct {
	admin     bool
	firstName string
	lastName  string
	email     string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := applogger.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	logger.SetOutput(os.Stderr)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.DatabaseAutoMigrate {
		if err := database.Migrate(db); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	userRepo := repositories.NewGORMUserRepository(db)

	var mailer services.CredentialMailer = services.NewLogMailer(logger)
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger, cfg.RabbitMQEmailQueue)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer mqClient.Close()
		mailer = services.NewQueueMailer(mqClient, cfg.RabbitMQEmailQueue)
	}

	credentials := services.NewCredentialService(userRepo, cfg.BcryptCost, cfg.APIKeyMaxAttempts, logger)
	userService := services.NewUserService(userRepo, credentials, mailer, logger)

	if err := run(context.Background(), userService, opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.BoolVar(&opts.admin, "admin", false, "grant ROLE_ADMIN")
	fs.StringVar(&opts.firstName, "first", "", "first name of the user")
	fs.StringVar(&opts.lastName, "last", "", "last name of the user")
	fs.StringVar(&opts.email, "email", "", "e-mail of the user")
	err := fs.Parse(args)
	return opts, err
}

// run prompts for the values missing from opts, creates the user and prints
// its credentials to out.
func run(ctx context.Context, userService *services.UserService, opts options, in io.Reader, out io.Writer) error {
	v := validation.NewUserValidator()
	reader := bufio.NewReader(in)

	var err error
	if opts.firstName, err = ask(reader, out, "First name", opts.firstName, v.ValidateFirstName); err != nil {
		return err
	}
	if opts.lastName, err = ask(reader, out, "Last name", opts.lastName, v.ValidateLastName); err != nil {
		return err
	}
	if opts.email, err = ask(reader, out, "E-mail", opts.email, v.ValidateEmail); err != nil {
		return err
	}

	created, err := userService.CreateUser(ctx, services.CreateUserInput{
		FirstName: opts.firstName,
		LastName:  opts.lastName,
		Email:     opts.email,
		Admin:     opts.admin,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created user %d (%s) with roles %s\n", created.User.ID, created.User.Email, strings.Join(created.User.Roles, ", "))
	fmt.Fprintf(out, "Password: %s\n", created.Password)
	fmt.Fprintln(out, "The password is not shown again.")
	return nil
}

// ask returns value when it is set, otherwise prompts until the answer
// passes check or the input ends.
func ask(reader *bufio.Reader, out io.Writer, label, value string, check func(string) error) (string, error) {
	if value != "" {
		return value, nil
	}
	for {
		fmt.Fprintf(out, "%s: ", label)
		line, readErr := reader.ReadString('\n')
		answer := strings.TrimSpace(line)

		err := check(answer)
		if err == nil {
			return answer, nil
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
			}
			return "", readErr
		}
		fmt.Fprintf(out, "Invalid %s, try again.\n", strings.ToLower(label))
	}
}
