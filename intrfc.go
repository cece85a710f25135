package topogen

// intrfc.go holds the address model: an interface is an ip in dotted-quad form
// together with a mask length.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMask is the mask length of every address the generator assigns
const DefaultMask = 24

// Intrfc is an address assigned to one end of a link. Once created it is not changed.
type Intrfc struct {
	IP   string
	Mask int
}

// CreateIntrfc is a constructor, validating both the ip and the mask
func CreateIntrfc(ip string, mask int) (Intrfc, error) {
	if err := CheckIP(ip); err != nil {
		return Intrfc{}, err
	}
	if mask < 1 || mask > 32 {
		return Intrfc{}, errors.Wrapf(ErrInvalidAddress, "/%d is not a valid subnet mask", mask)
	}
	return Intrfc{IP: ip, Mask: mask}, nil
}

// ParseIntrfc builds an Intrfc from its "ip/mask" string form
func ParseIntrfc(ipStr string) (Intrfc, error) {
	ipParts := strings.Split(ipStr, "/")
	if len(ipParts) != 2 {
		return Intrfc{}, errors.Wrapf(ErrInvalidAddress,
			"%q must be of the form X.X.X.X/X", ipStr)
	}

	mask, err := strconv.Atoi(ipParts[1])
	if err != nil {
		return Intrfc{}, errors.Wrapf(ErrInvalidAddress, "/%s is not a valid subnet mask", ipParts[1])
	}

	return CreateIntrfc(ipParts[0], mask)
}

// CheckIP validates the dotted-quad form of an address without a mask.
// Segments above 256 or below 0 are rejected.
func CheckIP(ip string) error {
	ipParts := strings.Split(ip, ".")
	if len(ipParts) != 4 {
		return errors.Wrapf(ErrInvalidAddress, "%s is not a valid IP address", ip)
	}

	for _, part := range ipParts {
		ipart, err := strconv.Atoi(part)
		if err != nil {
			return errors.Wrapf(ErrInvalidAddress, "%s is not a valid IP address", ip)
		}
		if ipart < 0 {
			return errors.Wrapf(ErrInvalidAddress,
				"%s is not a valid IP address, cannot have negative numbers", ip)
		}
		if ipart > 256 {
			return errors.Wrapf(ErrInvalidAddress,
				"%s is not a valid IP address, cannot have value greater than 256", ip)
		}
	}
	return nil
}

// String gives the "ip/mask" form
func (ifc Intrfc) String() string {
	return fmt.Sprintf("%s/%d", ifc.IP, ifc.Mask)
}

// Subnet returns the third octet of the address, the per-link subnet discriminator
func (ifc Intrfc) Subnet() int {
	return subnetOf(ifc.IP)
}

// subnetOf extracts the third octet of a validated dotted-quad, -1 if it has none
func subnetOf(ip string) int {
	ipParts := strings.Split(ip, ".")
	if len(ipParts) != 4 {
		return -1
	}
	subnet, err := strconv.Atoi(ipParts[2])
	if err != nil {
		return -1
	}
	return subnet
}

// linkIP gives the address of the device with the given id on the given subnet
func linkIP(subnet, id int) string {
	return fmt.Sprintf("10.0.%d.%d", subnet, id)
}
