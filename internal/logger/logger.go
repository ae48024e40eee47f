package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger writes categorized, colored log lines to stdout and mirrors them
// uncolored into a log file for later inspection.
type Logger struct {
	mu   sync.Mutex
	file *os.File

	infoColor    *color.Color
	warnColor    *color.Color
	errorColor   *color.Color
	debugColor   *color.Color
	processColor *color.Color
	paymentColor *color.Color
	kafkaColor   *color.Color
	dbColor      *color.Color
	apiColor     *color.Color
	secColor     *color.Color
}

func NewLogger() *Logger {
	l := &Logger{
		infoColor:    color.New(color.FgCyan),
		warnColor:    color.New(color.FgYellow),
		errorColor:   color.New(color.FgRed, color.Bold),
		debugColor:   color.New(color.FgWhite, color.Faint),
		processColor: color.New(color.FgGreen, color.Bold),
		paymentColor: color.New(color.FgMagenta),
		kafkaColor:   color.New(color.FgBlue),
		dbColor:      color.New(color.FgHiBlue),
		apiColor:     color.New(color.FgHiGreen),
		secColor:     color.New(color.FgHiRed),
	}

	file, err := os.OpenFile("checkout-gateway.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		l.file = file
	}

	return l
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *Logger) write(c *color.Color, level, category, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, level, category, message)

	c.Println(line)
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}

func (l *Logger) Info(category, message string) {
	l.write(l.infoColor, "INFO", category, message)
}

func (l *Logger) Warn(category, message string) {
	l.write(l.warnColor, "WARN", category, message)
}

func (l *Logger) Error(category, message string) {
	l.write(l.errorColor, "ERROR", category, message)
}

func (l *Logger) Debug(category, message string) {
	if os.Getenv("LOG_DEBUG") == "" {
		return
	}
	l.write(l.debugColor, "DEBUG", category, message)
}

func (l *Logger) Fatal(category, message string) {
	l.write(l.errorColor, "FATAL", category, message)
	l.Close()
	os.Exit(1)
}

// LogProcess marks lifecycle milestones (startup, shutdown, component init).
func (l *Logger) LogProcess(stage, message string) {
	l.write(l.processColor, "PROCESS", stage, message)
}

// LogPayment logs a payment-flow step keyed by the intent or payment id.
func (l *Logger) LogPayment(operation, id, message string) {
	l.write(l.paymentColor, "PAYMENT", operation, fmt.Sprintf("[%s] %s", id, message))
}

func (l *Logger) LogKafka(operation, topic, message string) {
	l.write(l.kafkaColor, "KAFKA", operation, fmt.Sprintf("[%s] %s", topic, message))
}

func (l *Logger) LogDatabase(operation, database, message string) {
	l.write(l.dbColor, "DATABASE", operation, fmt.Sprintf("[%s] %s", database, message))
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.write(l.apiColor, "API", method, fmt.Sprintf("%s - %s (%s)", path, status, duration))
}

func (l *Logger) LogSecurity(event, message string) {
	l.write(l.secColor, "SECURITY", event, message)
}
