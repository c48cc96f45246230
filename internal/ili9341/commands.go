package ili9341

// ILI9341 datasheet, pp. 83-88
const (
	cmdSWRESET byte = 0x01 // Software Reset
	cmdSLPIN   byte = 0x10 // Enter Sleep Mode
	cmdSLPOUT  byte = 0x11 // Sleep Out
	cmdGAMSET  byte = 0x26 // Gamma Set
	cmdDISOFF  byte = 0x28 // Display OFF
	cmdDISON   byte = 0x29 // Display ON
	cmdCASET   byte = 0x2a // Column Address Set
	cmdPASET   byte = 0x2b // Page Address Set
	cmdRAMWR   byte = 0x2c // Memory Write
	cmdMADCTL  byte = 0x36 // Memory Access Control
	cmdPIXFMT  byte = 0x3a // COLMOD: Interface Pixel Format

	cmdFRMCTR1  byte = 0xb1 // Frame Rate Control (Normal Mode)
	cmdDISCTRL  byte = 0xb6 // Display Function Control
	cmdPWCTRL1  byte = 0xc0 // Power Control 1
	cmdPWCTRL2  byte = 0xc1 // Power Control 2
	cmdVMCTRL1  byte = 0xc5 // VCOM Control 1
	cmdVMCTRL2  byte = 0xc7 // VCOM Control 2
	cmdPWCTRLA  byte = 0xcb // Power Control A
	cmdPWCTRLB  byte = 0xcf // Power Control B
	cmdGAMCTRLP byte = 0xe0 // Positive Gamma Control
	cmdGAMCTRLN byte = 0xe1 // Negative Gamma Control
	cmdTIMCTRLA byte = 0xe8 // Driver Timing Control A
	cmdTIMCTRLB byte = 0xea // Driver Timing Control B
	cmdPWSEQ    byte = 0xed // Power on Sequence Control
	cmdGAM3CTRL byte = 0xf2 // Enable 3 Gamma Control
	cmdPUMP     byte = 0xf7 // Pump Ratio Control
)

const (
	madctlMY  byte = 0x80 // Row Address Order         1 = address bottom to top
	madctlMX  byte = 0x40 // Column Address Order      1 = address right to left
	madctlMV  byte = 0x20 // Row/Column Exchange       1 = mirror and rotate 90 ccw
	madctlBGR byte = 0x08 // RGB-BGR Order             1 = Blue-Green-Red pixel order
)

type command struct {
	cmd  byte
	data []byte
}

// initSequence brings the panel out of reset into RGB565 mode. MADCTL,
// sleep out and display on follow it.
var initSequence = []command{
	{cmdPWCTRLB, []byte{0x00, 0xc1, 0x30}},
	{cmdPWSEQ, []byte{0x64, 0x03, 0x12, 0x81}},
	{cmdTIMCTRLA, []byte{0x85, 0x00, 0x78}},
	{cmdPWCTRLA, []byte{0x39, 0x2c, 0x00, 0x34, 0x02}},
	{cmdPUMP, []byte{0x20}},             // DDVDH=2xVCI
	{cmdTIMCTRLB, []byte{0x00, 0x00}},   // gate driver timing
	{cmdPWCTRL1, []byte{0x23}},          // 4.60V
	{cmdPWCTRL2, []byte{0x10}},          // DDVDH: VCIx2
	{cmdVMCTRL1, []byte{0x3e, 0x28}},    // VMH: 5.850V, VML: -1.500V
	{cmdVMCTRL2, []byte{0x86}},          // VMF: VMH-58, VML-58
	{cmdPIXFMT, []byte{0x55}},           // 16 bits / pixel
	{cmdFRMCTR1, []byte{0x00, 0x18}},    // 79Hz
	{cmdDISCTRL, []byte{0x08, 0x82, 0x27}},
	{cmdGAM3CTRL, []byte{0x00}},
	{cmdGAMSET, []byte{0x01}}, // curve 1
	{cmdGAMCTRLP, []byte{0x0f, 0x31, 0x2b, 0x0c, 0x0e, 0x08, 0x4e, 0xf1, 0x37, 0x07, 0x10, 0x03, 0x0e, 0x09, 0x00}},
	{cmdGAMCTRLN, []byte{0x00, 0x0e, 0x14, 0x03, 0x11, 0x07, 0x31, 0xc1, 0x48, 0x08, 0x0f, 0x0c, 0x31, 0x36, 0x0f}},
}
