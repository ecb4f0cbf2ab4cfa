// Package backup exports router configurations over SSH.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/Munger/mikro-manager/pkg/config"
	"github.com/Munger/mikro-manager/pkg/util"
)

// sshTimeout bounds the SSH dial per router.
const sshTimeout = 10 * time.Second

// exportCommand prints the full router configuration as a script.
const exportCommand = "/export"

// Result describes one router's backup outcome.
type Result struct {
	Router string
	Path   string
	Err    error
}

// Runner backs up router configurations into an output directory.
type Runner struct {
	OutputDir string

	// dial is swappable for tests.
	dial func(router *config.Router) (session, error)
}

type session interface {
	CombinedOutput(cmd string) ([]byte, error)
	Close() error
}

// sshSession pairs an SSH session with its client so Close tears down
// both.
type sshSession struct {
	client  *ssh.Client
	session *ssh.Session
}

func (s *sshSession) CombinedOutput(cmd string) ([]byte, error) {
	return s.session.CombinedOutput(cmd)
}

func (s *sshSession) Close() error {
	s.session.Close()
	return s.client.Close()
}

func dialRouter(router *config.Router) (session, error) {
	cfg := &ssh.ClientConfig{
		User: router.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(router.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshTimeout,
	}

	client, err := ssh.Dial("tcp", router.SSHAddress(), cfg)
	if err != nil {
		return nil, fmt.Errorf("ssh %s: %w", router.SSHAddress(), err)
	}
	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, err
	}
	return &sshSession{client: client, session: sess}, nil
}

// NewRunner creates a backup runner writing into outputDir.
func NewRunner(outputDir string) *Runner {
	return &Runner{OutputDir: outputDir, dial: dialRouter}
}

// Run backs up every given router. Failures are per-router; the run
// continues past them and reports each outcome.
func (r *Runner) Run(routers []*config.Router) ([]Result, error) {
	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	results := make([]Result, 0, len(routers))
	for _, router := range routers {
		path, err := r.backupOne(router, timestamp)
		if err != nil {
			util.WithRouter(router.Name).Warnf("backup failed: %v", err)
		}
		results = append(results, Result{Router: router.Name, Path: path, Err: err})
	}
	return results, nil
}

func (r *Runner) backupOne(router *config.Router, timestamp string) (string, error) {
	sess, err := r.dial(router)
	if err != nil {
		return "", err
	}
	defer sess.Close()

	output, err := sess.CombinedOutput(exportCommand)
	if err != nil {
		return "", fmt.Errorf("running %s: %w", exportCommand, err)
	}

	path := filepath.Join(r.OutputDir, fmt.Sprintf("%s-%s.rsc", router.Name, timestamp))
	if err := os.WriteFile(path, output, 0600); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return path, nil
}
