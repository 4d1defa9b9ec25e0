package services

import (
	"fmt"
	"io"
	"log"

	"github.com/facekiosk/attendancebackend/media"
	"github.com/facekiosk/attendancebackend/repository"
)

// EnrollmentService coordinates portrait upload, face encoding and
// encoding persistence so an employee becomes recognizable at the kiosk.
type EnrollmentService struct {
	store        media.Store
	processor    *media.Processor
	detector     *media.DNNFaceDetector
	recognizer   *media.FaceRecognitionModel
	encodings    *media.EncodingStore
	employeeRepo repository.EmployeeRepositoryInterface

	portraitMaxSize int
}

func NewEnrollmentService(
	store media.Store,
	processor *media.Processor,
	detector *media.DNNFaceDetector,
	recognizer *media.FaceRecognitionModel,
	encodings *media.EncodingStore,
	employeeRepo repository.EmployeeRepositoryInterface,
	portraitMaxSize int,
) *EnrollmentService {
	return &EnrollmentService{
		store:           store,
		processor:       processor,
		detector:        detector,
		recognizer:      recognizer,
		encodings:       encodings,
		employeeRepo:    employeeRepo,
		portraitMaxSize: portraitMaxSize,
	}
}

// EnrollPortrait normalizes and stores an uploaded portrait, encodes
// the face in it, and records both against the employee. The portrait
// is saved before encoding so a failed encode can be retried from disk.
func (s *EnrollmentService) EnrollPortrait(employeeID uint, fileData io.Reader) (string, error) {
	employee, err := s.employeeRepo.GetByID(employeeID)
	if err != nil {
		return "", fmt.Errorf("failed to load employee %d: %w", employeeID, err)
	}

	relPath, err := s.processor.ProcessPortrait(fileData, employee.SessionCodeID, employee.RegID, s.portraitMaxSize)
	if err != nil {
		return "", err
	}

	if err := s.employeeRepo.UpdatePhotoPath(employee.ID, &relPath); err != nil {
		return "", fmt.Errorf("failed to record portrait path: %w", err)
	}

	if err := s.encodeStoredPortrait(employee.SessionCodeID, employee.RegID, relPath); err != nil {
		return "", err
	}

	log.Printf("enrollment: enrolled %s (tenant %d) from %s", employee.RegID, employee.SessionCodeID, relPath)
	return relPath, nil
}

// RebuildEncoding re-encodes an employee's stored portrait, used after
// swapping recognition models or recovering a lost encodings directory
func (s *EnrollmentService) RebuildEncoding(employeeID uint) error {
	employee, err := s.employeeRepo.GetByID(employeeID)
	if err != nil {
		return fmt.Errorf("failed to load employee %d: %w", employeeID, err)
	}
	if employee.PhotoPath == nil {
		return fmt.Errorf("employee %s has no enrolled portrait", employee.RegID)
	}
	return s.encodeStoredPortrait(employee.SessionCodeID, employee.RegID, *employee.PhotoPath)
}

// RemoveEnrollment deletes the stored portrait and encoding for an
// employee, typically right before the employee record itself goes
func (s *EnrollmentService) RemoveEnrollment(employeeID uint) error {
	employee, err := s.employeeRepo.GetByID(employeeID)
	if err != nil {
		return fmt.Errorf("failed to load employee %d: %w", employeeID, err)
	}

	if err := s.encodings.Remove(employee.SessionCodeID, employee.RegID); err != nil {
		return fmt.Errorf("failed to remove encoding for %s: %w", employee.RegID, err)
	}

	if employee.PhotoPath != nil {
		if err := s.store.Delete(*employee.PhotoPath); err != nil {
			log.Printf("enrollment: failed to delete portrait %s: %v", *employee.PhotoPath, err)
		}
		if err := s.employeeRepo.UpdatePhotoPath(employee.ID, nil); err != nil {
			return fmt.Errorf("failed to clear portrait path: %w", err)
		}
	}

	log.Printf("enrollment: removed enrollment for %s (tenant %d)", employee.RegID, employee.SessionCodeID)
	return nil
}

func (s *EnrollmentService) encodeStoredPortrait(tenantID uint, regID, relPath string) error {
	fullPath, err := s.store.GetFullPath(relPath)
	if err != nil {
		return fmt.Errorf("failed to resolve portrait path: %w", err)
	}

	embedding, err := media.EncodePortraitFile(fullPath, s.detector, s.recognizer)
	if err != nil {
		return fmt.Errorf("failed to encode portrait: %w", err)
	}

	if err := s.encodings.Set(tenantID, regID, embedding); err != nil {
		return fmt.Errorf("failed to store encoding: %w", err)
	}
	return nil
}
