package expense

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aditya-raulji/expense-scanner/internal/extraction"
)

// multipartUpload builds a multipart body with a single file field
func multipartUpload(filename string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(content)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).To(Succeed())
	return body, writer.FormDataContentType()
}

var _ = ginkgo.Describe("Server", func() {
	var (
		db        *mockDB
		storage   *mockStorage
		extractor *mockExtractor
		service   *Service
		server    *Server
		recorder  *httptest.ResponseRecorder
	)

	ginkgo.BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		extractor = newMockExtractor()
		idGen := &mockIDGenerator{id: "test-id-123"}
		timeSrc := &mockTimeSource{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, extractor, storage, idGen, timeSrc)
		server = NewServer(service, BasicAuth{})
		recorder = httptest.NewRecorder()
	})

	ginkgo.Describe("POST /api/expenses/scan", func() {
		ginkgo.When("a receipt is uploaded", func() {
			ginkgo.BeforeEach(func() {
				body, contentType := multipartUpload("receipt.jpg", []byte("fake image data"))
				req := httptest.NewRequest("POST", "/api/expenses/scan", body)
				req.Header.Set("Content-Type", contentType)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 200", func() {
				Expect(recorder.Code).To(Equal(http.StatusOK))
			})

			ginkgo.It("returns the scan result as JSON", func() {
				var result ScanResult
				Expect(json.Unmarshal(recorder.Body.Bytes(), &result)).To(Succeed())
				Expect(result.Expense.ID).To(Equal("test-id-123"))
				Expect(result.Expense.Amount).To(Equal(1250))
				Expect(result.Prefill.Amount).To(Equal("12.50"))
				Expect(result.Validation.IsValid).To(BeTrue())
			})

			ginkgo.It("does not save the expense to the database", func() {
				_, err := db.GetExpense("test-id-123")
				Expect(err).To(HaveOccurred())
			})

			ginkgo.It("saves the file to storage", func() {
				Expect(storage.files).To(HaveKey("test-id-123_receipt.jpg"))
			})
		})

		ginkgo.When("no file is provided", func() {
			ginkgo.BeforeEach(func() {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				Expect(writer.Close()).To(Succeed())
				req := httptest.NewRequest("POST", "/api/expenses/scan", body)
				req.Header.Set("Content-Type", writer.FormDataContentType())
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 400", func() {
				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			})

			ginkgo.It("returns a JSON error body", func() {
				var errResp map[string]string
				Expect(json.Unmarshal(recorder.Body.Bytes(), &errResp)).To(Succeed())
				Expect(errResp).To(HaveKey("error"))
			})
		})

		ginkgo.When("another scan is already in flight", func() {
			ginkgo.BeforeEach(func() {
				extractor.extractErr = extraction.ErrAlreadyProcessing
				body, contentType := multipartUpload("receipt.jpg", []byte("fake image data"))
				req := httptest.NewRequest("POST", "/api/expenses/scan", body)
				req.Header.Set("Content-Type", contentType)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 409", func() {
				Expect(recorder.Code).To(Equal(http.StatusConflict))
			})
		})

		ginkgo.When("recognition fails", func() {
			ginkgo.BeforeEach(func() {
				extractor.extractErr = &extraction.RecognitionError{Err: bytes.ErrTooLarge}
				body, contentType := multipartUpload("receipt.jpg", []byte("fake image data"))
				req := httptest.NewRequest("POST", "/api/expenses/scan", body)
				req.Header.Set("Content-Type", contentType)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 400", func() {
				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			})
		})
	})

	ginkgo.Describe("POST /api/expenses", func() {
		ginkgo.When("a reviewed expense is submitted", func() {
			ginkgo.BeforeEach(func() {
				expense := Expense{
					ID:          "test-id-123",
					Description: "Coffee and Sandwich",
					Amount:      1250,
					Currency:    "USD",
				}
				body, _ := json.Marshal(expense)
				req := httptest.NewRequest("POST", "/api/expenses", bytes.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 201", func() {
				Expect(recorder.Code).To(Equal(http.StatusCreated))
			})

			ginkgo.It("saves the expense", func() {
				saved, err := db.GetExpense("test-id-123")
				Expect(err).NotTo(HaveOccurred())
				Expect(saved.Status).To(Equal(StatusSubmitted))
			})
		})

		ginkgo.When("the body is not JSON", func() {
			ginkgo.BeforeEach(func() {
				req := httptest.NewRequest("POST", "/api/expenses", bytes.NewReader([]byte("not json")))
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 400", func() {
				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			})
		})
	})

	ginkgo.Describe("GET /api/expenses", func() {
		ginkgo.BeforeEach(func() {
			Expect(db.SaveExpense(&Expense{ID: "expense-1"})).To(Succeed())
			req := httptest.NewRequest("GET", "/api/expenses", nil)
			server.ServeHTTP(recorder, req)
		})

		ginkgo.It("returns 200 with the expenses", func() {
			Expect(recorder.Code).To(Equal(http.StatusOK))
			var expenses []*Expense
			Expect(json.Unmarshal(recorder.Body.Bytes(), &expenses)).To(Succeed())
			Expect(expenses).To(HaveLen(1))
		})
	})

	ginkgo.Describe("GET /api/expenses/{id}", func() {
		ginkgo.BeforeEach(func() {
			Expect(db.SaveExpense(&Expense{ID: "expense-1", Description: "Taxi"})).To(Succeed())
		})

		ginkgo.When("the expense exists", func() {
			ginkgo.BeforeEach(func() {
				req := httptest.NewRequest("GET", "/api/expenses/expense-1", nil)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 200 with the expense", func() {
				Expect(recorder.Code).To(Equal(http.StatusOK))
				var expense Expense
				Expect(json.Unmarshal(recorder.Body.Bytes(), &expense)).To(Succeed())
				Expect(expense.Description).To(Equal("Taxi"))
			})
		})

		ginkgo.When("the expense does not exist", func() {
			ginkgo.BeforeEach(func() {
				req := httptest.NewRequest("GET", "/api/expenses/missing", nil)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 404", func() {
				Expect(recorder.Code).To(Equal(http.StatusNotFound))
			})
		})
	})

	ginkgo.Describe("GET /api/expenses/{id}/file", func() {
		ginkgo.BeforeEach(func() {
			Expect(db.SaveExpense(&Expense{
				ID:          "expense-1",
				Filename:    "expense-1_receipt.jpg",
				ContentType: "image/jpeg",
			})).To(Succeed())
			_, err := storage.Save("expense-1_receipt.jpg", []byte("image bytes"))
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest("GET", "/api/expenses/expense-1/file", nil)
			server.ServeHTTP(recorder, req)
		})

		ginkgo.It("returns the file with its content type", func() {
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(recorder.Header().Get("Content-Type")).To(Equal("image/jpeg"))
			Expect(recorder.Body.Bytes()).To(Equal([]byte("image bytes")))
		})
	})

	ginkgo.Describe("DELETE /api/expenses/{id}", func() {
		ginkgo.BeforeEach(func() {
			Expect(db.SaveExpense(&Expense{ID: "expense-1", Filename: "f.jpg"})).To(Succeed())
			_, err := storage.Save("f.jpg", []byte("data"))
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest("DELETE", "/api/expenses/expense-1", nil)
			server.ServeHTTP(recorder, req)
		})

		ginkgo.It("returns 204", func() {
			Expect(recorder.Code).To(Equal(http.StatusNoContent))
		})

		ginkgo.It("removes the expense", func() {
			_, err := db.GetExpense("expense-1")
			Expect(err).To(HaveOccurred())
		})
	})

	ginkgo.Describe("POST /api/reports", func() {
		ginkgo.BeforeEach(func() {
			Expect(db.SaveExpense(&Expense{ID: "expense-1", Amount: 1250, Status: StatusSubmitted})).To(Succeed())
		})

		ginkgo.When("the expenses are submitted", func() {
			ginkgo.BeforeEach(func() {
				body, _ := json.Marshal(map[string][]string{"expense_ids": {"expense-1"}})
				req := httptest.NewRequest("POST", "/api/reports", bytes.NewReader(body))
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 201 with the report", func() {
				Expect(recorder.Code).To(Equal(http.StatusCreated))
				var report Report
				Expect(json.Unmarshal(recorder.Body.Bytes(), &report)).To(Succeed())
				Expect(report.TotalAmount).To(Equal(1250))
				Expect(report.Status).To(Equal(ReportPending))
			})
		})

		ginkgo.When("an expense is missing", func() {
			ginkgo.BeforeEach(func() {
				body, _ := json.Marshal(map[string][]string{"expense_ids": {"missing"}})
				req := httptest.NewRequest("POST", "/api/reports", bytes.NewReader(body))
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 400", func() {
				Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			})
		})
	})

	ginkgo.Describe("POST /api/reports/{id}/approve", func() {
		ginkgo.BeforeEach(func() {
			Expect(db.SaveExpense(&Expense{ID: "expense-1", Amount: 1250, Status: StatusSubmitted})).To(Succeed())
			_, err := service.CreateReport([]string{"expense-1"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest("POST", "/api/reports/test-id-123/approve", nil)
			server.ServeHTTP(recorder, req)
		})

		ginkgo.It("returns 200 with the approved report", func() {
			Expect(recorder.Code).To(Equal(http.StatusOK))
			var report Report
			Expect(json.Unmarshal(recorder.Body.Bytes(), &report)).To(Succeed())
			Expect(report.Status).To(Equal(ReportApproved))
		})

		ginkgo.It("approves the expenses", func() {
			expense, err := db.GetExpense("expense-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(expense.Status).To(Equal(StatusApproved))
		})
	})

	ginkgo.Describe("POST /api/reports/{id}/reject", func() {
		ginkgo.BeforeEach(func() {
			Expect(db.SaveExpense(&Expense{ID: "expense-1", Amount: 1250, Status: StatusSubmitted})).To(Succeed())
			_, err := service.CreateReport([]string{"expense-1"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest("POST", "/api/reports/test-id-123/reject", nil)
			server.ServeHTTP(recorder, req)
		})

		ginkgo.It("returns 200 with the rejected report", func() {
			Expect(recorder.Code).To(Equal(http.StatusOK))
			var report Report
			Expect(json.Unmarshal(recorder.Body.Bytes(), &report)).To(Succeed())
			Expect(report.Status).To(Equal(ReportRejected))
		})
	})

	ginkgo.Describe("GET /api/reports/{id}", func() {
		ginkgo.BeforeEach(func() {
			Expect(db.SaveExpense(&Expense{ID: "expense-1", Amount: 1250, Status: StatusSubmitted})).To(Succeed())
			_, err := service.CreateReport([]string{"expense-1"})
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest("GET", "/api/reports/test-id-123", nil)
			server.ServeHTTP(recorder, req)
		})

		ginkgo.It("returns the report with its expenses", func() {
			Expect(recorder.Code).To(Equal(http.StatusOK))
			var response struct {
				Report   *Report    `json:"report"`
				Expenses []*Expense `json:"expenses"`
			}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Report.ID).To(Equal("test-id-123"))
			Expect(response.Expenses).To(HaveLen(1))
		})
	})

	ginkgo.Describe("GET /api/reports", func() {
		ginkgo.When("no reports exist", func() {
			ginkgo.BeforeEach(func() {
				req := httptest.NewRequest("GET", "/api/reports", nil)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns an empty array, not null", func() {
				Expect(recorder.Code).To(Equal(http.StatusOK))
				Expect(recorder.Body.String()).To(MatchJSON("[]"))
			})
		})
	})

	ginkgo.Describe("basic auth", func() {
		ginkgo.BeforeEach(func() {
			server = NewServer(service, BasicAuth{Username: "admin", Password: "secret"})
		})

		ginkgo.When("no credentials are provided", func() {
			ginkgo.BeforeEach(func() {
				req := httptest.NewRequest("GET", "/api/expenses", nil)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 401", func() {
				Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
			})

			ginkgo.It("sets the WWW-Authenticate header", func() {
				Expect(recorder.Header().Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
			})
		})

		ginkgo.When("valid credentials are provided", func() {
			ginkgo.BeforeEach(func() {
				req := httptest.NewRequest("GET", "/api/expenses", nil)
				credentials := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
				req.Header.Set("Authorization", "Basic "+credentials)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("allows the request", func() {
				Expect(recorder.Code).To(Equal(http.StatusOK))
			})
		})

		ginkgo.When("wrong credentials are provided", func() {
			ginkgo.BeforeEach(func() {
				req := httptest.NewRequest("GET", "/api/expenses", nil)
				credentials := base64.StdEncoding.EncodeToString([]byte("admin:wrong"))
				req.Header.Set("Authorization", "Basic "+credentials)
				server.ServeHTTP(recorder, req)
			})

			ginkgo.It("returns 401", func() {
				Expect(recorder.Code).To(Equal(http.StatusUnauthorized))
			})
		})
	})
})
