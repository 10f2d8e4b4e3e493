package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	remembered   map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:         tc,
		remembered: make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^the gateway is running$`, s.theGatewayIsRunning)
	sc.Step(`^all courseware tables are empty$`, s.allTablesAreEmpty)

	// Authentication steps
	sc.Step(`^I am authenticated as "([^"]*)"$`, s.iAmAuthenticatedAs)
	sc.Step(`^I am not authenticated$`, s.iAmNotAuthenticated)

	// Request steps
	sc.Step(`^I (GET|DELETE) "([^"]*)"$`, s.iRequest)
	sc.Step(`^I (POST|PUT) to "([^"]*)" with body:$`, s.iRequestWithBody)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should indicate (success|failure)$`, s.theResponseShouldIndicate)
	sc.Step(`^the data field "([^"]*)" should be "([^"]*)"$`, s.theDataFieldShouldBe)
	sc.Step(`^I remember the data field "([^"]*)" as "([^"]*)"$`, s.iRememberTheDataField)
	sc.Step(`^the data list should be empty$`, s.theDataListShouldBeEmpty)
	sc.Step(`^the listed titles should be "([^"]*)"$`, s.theListedTitlesShouldBe)
	sc.Step(`^the response should not mention "([^"]*)"$`, s.theResponseShouldNotMention)

	// Database assertions
	sc.Step(`^there should be (\d+) comment rows for parent "([^"]*)"$`, s.commentRowsForParent)
}

func (s *StepsContext) theGatewayIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) allTablesAreEmpty() error {
	s.authToken = ""
	s.remembered = make(map[string]string)
	return s.tc.DB.Exec(`TRUNCATE students, assignments, resources, weeks, comments`).Error
}

func (s *StepsContext) iAmAuthenticatedAs(role string) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": role})
	signed, err := token.SignedString([]byte(integrationTokenKey))
	if err != nil {
		return fmt.Errorf("failed to sign role token: %w", err)
	}
	s.authToken = signed
	return nil
}

func (s *StepsContext) iAmNotAuthenticated() error {
	s.authToken = ""
	return nil
}

// substitute replaces {name} placeholders with remembered values.
func (s *StepsContext) substitute(in string) string {
	out := in
	for name, value := range s.remembered {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

func (s *StepsContext) send(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, s.tc.ServerURL+s.substitute(path), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) iRequest(method, path string) error {
	return s.send(method, path, nil)
}

func (s *StepsContext) iRequestWithBody(method, path string, body *godog.DocString) error {
	return s.send(method, path, bytes.NewReader([]byte(s.substitute(body.Content))))
}

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) envelope() (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", s.responseBody)
	}
	return body, nil
}

func (s *StepsContext) theResponseShouldIndicate(outcome string) error {
	body, err := s.envelope()
	if err != nil {
		return err
	}
	success, ok := body["success"].(bool)
	if !ok {
		return fmt.Errorf("envelope has no success flag: %s", s.responseBody)
	}
	if success != (outcome == "success") {
		return fmt.Errorf("expected %s, got: %s", outcome, s.responseBody)
	}
	return nil
}

// jsonString renders envelope values the way the feature file writes
// them; integer-valued numbers drop the decimal point.
func jsonString(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (s *StepsContext) dataObject() (map[string]interface{}, error) {
	body, err := s.envelope()
	if err != nil {
		return nil, err
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("envelope data is not an object: %s", s.responseBody)
	}
	return data, nil
}

func (s *StepsContext) dataList() ([]interface{}, error) {
	body, err := s.envelope()
	if err != nil {
		return nil, err
	}
	data, ok := body["data"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("envelope data is not a list: %s", s.responseBody)
	}
	return data, nil
}

func (s *StepsContext) theDataFieldShouldBe(field, expected string) error {
	data, err := s.dataObject()
	if err != nil {
		return err
	}
	if got := jsonString(data[field]); got != s.substitute(expected) {
		return fmt.Errorf("expected data.%s = %q, got %q", field, expected, got)
	}
	return nil
}

func (s *StepsContext) iRememberTheDataField(field, name string) error {
	data, err := s.dataObject()
	if err != nil {
		return err
	}
	value, ok := data[field]
	if !ok {
		return fmt.Errorf("data has no field %q: %s", field, s.responseBody)
	}
	s.remembered[name] = jsonString(value)
	return nil
}

func (s *StepsContext) theDataListShouldBeEmpty() error {
	data, err := s.dataList()
	if err != nil {
		return err
	}
	if len(data) != 0 {
		return fmt.Errorf("expected empty list, got %d entries: %s", len(data), s.responseBody)
	}
	return nil
}

func (s *StepsContext) theListedTitlesShouldBe(expected string) error {
	data, err := s.dataList()
	if err != nil {
		return err
	}
	titles := make([]string, 0, len(data))
	for _, entry := range data {
		record, ok := entry.(map[string]interface{})
		if !ok {
			return fmt.Errorf("list entry is not an object: %s", s.responseBody)
		}
		titles = append(titles, jsonString(record["title"]))
	}
	got := strings.Join(titles, ",")
	if got != expected {
		return fmt.Errorf("expected titles %q, got %q", expected, got)
	}
	return nil
}

func (s *StepsContext) theResponseShouldNotMention(needle string) error {
	if strings.Contains(string(s.responseBody), needle) {
		return fmt.Errorf("response mentions %q: %s", needle, s.responseBody)
	}
	return nil
}

func (s *StepsContext) commentRowsForParent(expected int, parent string) error {
	var count int64
	err := s.tc.DB.Raw(`SELECT COUNT(*) FROM comments WHERE parent_id = ?`, s.substitute(parent)).Scan(&count).Error
	if err != nil {
		return err
	}
	if count != int64(expected) {
		return fmt.Errorf("expected %d comment rows for parent %q, found %d", expected, parent, count)
	}
	return nil
}
