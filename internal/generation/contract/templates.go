// internal/generation/contract/templates.go
package contract

// SchemaVersion tags the template layout. It participates in request
// fingerprinting: bumping it after a fragment change invalidates every
// cached result produced under the old layout.
const SchemaVersion = "v3"

const baseSkeleton = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;

/// @title {{contractName}}
/// @notice Generated {{artifactCategory}} agreement for a {{organizationType}} ({{transactionPattern}} pattern)
contract {{contractName}} {
    address public owner;
    bool public active;

{{orgState}}
{{categoryState}}

    event AgreementActivated(address indexed by, uint256 timestamp);
    event AgreementTerminated(address indexed by, uint256 timestamp);
{{categoryEvents}}

    modifier onlyOwner() {
        require(msg.sender == owner, "caller is not the owner");
        _;
    }

    modifier whenActive() {
        require(active, "agreement is not active");
        _;
    }

{{txnModifiers}}

    constructor({{constructorParams}}) {
        owner = msg.sender;
        active = true;
{{constructorBody}}
        emit AgreementActivated(msg.sender, block.timestamp);
    }

{{orgFunctions}}
{{categoryFunctions}}

    function terminate() external onlyOwner whenActive {
        active = false;
        emit AgreementTerminated(msg.sender, block.timestamp);
    }
}
`

// fragment carries the pieces one dimension of the request contributes to the
// skeleton. A missing lookup yields the zero fragment, never an error.
type fragment struct {
	State             string
	Events            string
	Modifiers         string
	ConstructorParams string
	ConstructorBody   string
	Functions         string
	ContextNote       string
}

var orgFragments = map[string]fragment{
	"sole-proprietorship": {
		ContextNote: "Single beneficial owner; no partner registry is required.",
	},
	"partnership": {
		State: `    mapping(address => uint256) public partnerShares;
    address[] public partners;`,
		Functions: `    function registerPartner(address partner, uint256 shareBps) external onlyOwner whenActive {
        require(partner != address(0), "zero partner address");
        require(partnerShares[partner] == 0, "partner already registered");
        require(shareBps > 0 && shareBps <= 10000, "share out of range");
        partnerShares[partner] = shareBps;
        partners.push(partner);
    }

    function partnerCount() external view returns (uint256) {
        return partners.length;
    }`,
		ContextNote: "Partners hold basis-point shares; the registry is owner-managed.",
	},
	"llp": {
		State: `    mapping(address => uint256) public partnerShares;
    address[] public partners;
    uint256 public constant LIABILITY_CAP_BPS = 10000;`,
		Functions: `    function registerPartner(address partner, uint256 shareBps) external onlyOwner whenActive {
        require(partner != address(0), "zero partner address");
        require(partnerShares[partner] == 0, "partner already registered");
        require(shareBps > 0 && shareBps <= LIABILITY_CAP_BPS, "share out of range");
        partnerShares[partner] = shareBps;
        partners.push(partner);
    }

    function partnerCount() external view returns (uint256) {
        return partners.length;
    }`,
		ContextNote: "Limited liability partnership: partner exposure is capped at the registered share.",
	},
	"private-limited": {
		State: `    mapping(address => uint256) public shareholderEquity;
    uint256 public totalShares;`,
		Functions: `    function allocateShares(address holder, uint256 amount) external onlyOwner whenActive {
        require(holder != address(0), "zero holder address");
        shareholderEquity[holder] += amount;
        totalShares += amount;
    }`,
		ContextNote: "Closely held company; share transfers are restricted to owner allocation.",
	},
	"public-limited": {
		State: `    mapping(address => uint256) public shareholderEquity;
    uint256 public totalShares;
    bool public transfersOpen;`,
		Functions: `    function allocateShares(address holder, uint256 amount) external onlyOwner whenActive {
        require(holder != address(0), "zero holder address");
        shareholderEquity[holder] += amount;
        totalShares += amount;
    }

    function setTransfersOpen(bool open) external onlyOwner {
        transfersOpen = open;
    }`,
		ContextNote: "Publicly held company; equity transfers may be opened to third parties.",
	},
}

var txnFragments = map[string]fragment{
	"b2b": {
		Modifiers: `    modifier onlyRegisteredEntity() {
        require(registeredEntities[msg.sender], "caller is not a registered entity");
        _;
    }`,
		State: `    mapping(address => bool) public registeredEntities;`,
		Functions: `    function registerEntity(address entity) external onlyOwner {
        require(entity != address(0), "zero entity address");
        registeredEntities[entity] = true;
    }`,
		ContextNote: "Business-to-business: every counterparty must be a registered entity.",
	},
	"b2c": {
		State: `    uint256 public consumerCoolingOffPeriod = 14 days;
    mapping(address => uint256) public consumerEnrolledAt;`,
		Functions: `    function enrollConsumer() external whenActive {
        require(consumerEnrolledAt[msg.sender] == 0, "already enrolled");
        consumerEnrolledAt[msg.sender] = block.timestamp;
    }

    function withinCoolingOff(address consumer) public view returns (bool) {
        uint256 enrolledAt = consumerEnrolledAt[consumer];
        return enrolledAt != 0 && block.timestamp <= enrolledAt + consumerCoolingOffPeriod;
    }`,
		ContextNote: "Business-to-consumer: consumers self-enroll and keep a statutory cooling-off window.",
	},
	"p2p": {
		State: `    mapping(address => mapping(address => bool)) public mutualConsent;`,
		Functions: `    function consentTo(address counterparty) external whenActive {
        require(counterparty != address(0), "zero counterparty");
        mutualConsent[msg.sender][counterparty] = true;
    }

    function hasMutualConsent(address a, address b) public view returns (bool) {
        return mutualConsent[a][b] && mutualConsent[b][a];
    }`,
		ContextNote: "Peer-to-peer: obligations bind only after mutual consent is recorded on both sides.",
	},
}

var categoryFragments = map[string]fragment{
	"profit-sharing": {
		State: `    uint256 public distributableProfit;`,
		Events: `    event ProfitDeposited(address indexed from, uint256 amount);
    event ProfitDistributed(uint256 total, uint256 timestamp);`,
		Functions: `    function depositProfit() external payable whenActive {
        require(msg.value > 0, "no profit attached");
        distributableProfit += msg.value;
        emit ProfitDeposited(msg.sender, msg.value);
    }

    function distributeProfit() external onlyOwner whenActive {
        uint256 total = distributableProfit;
        require(total > 0, "nothing to distribute");
        distributableProfit = 0;
        for (uint256 i = 0; i < partners.length; i++) {
            address partner = partners[i];
            uint256 slice = (total * partnerShares[partner]) / 10000;
            (bool ok, ) = payable(partner).call{value: slice}("");
            require(ok, "profit transfer failed");
        }
        emit ProfitDistributed(total, block.timestamp);
    }`,
		ContextNote: "Profit is pooled in the contract and distributed pro rata to registered shares.",
	},
	"revenue-sharing": {
		State: `    uint256 public grossRevenue;
    uint256 public platformFeeBps = 250;`,
		Events: `    event RevenueRecorded(address indexed from, uint256 amount);`,
		Functions: `    function recordRevenue() external payable whenActive {
        require(msg.value > 0, "no revenue attached");
        uint256 fee = (msg.value * platformFeeBps) / 10000;
        grossRevenue += msg.value - fee;
        emit RevenueRecorded(msg.sender, msg.value);
    }

    function setPlatformFee(uint256 feeBps) external onlyOwner {
        require(feeBps <= 1000, "fee exceeds cap");
        platformFeeBps = feeBps;
    }`,
		ContextNote: "Top-line revenue is shared after a capped platform fee.",
	},
	"escrow": {
		State: `    address public beneficiary;
    uint256 public escrowBalance;
    bool public released;`,
		Events: `    event EscrowFunded(address indexed from, uint256 amount);
    event EscrowReleased(address indexed to, uint256 amount);
    event EscrowRefunded(address indexed to, uint256 amount);`,
		ConstructorParams: "address escrowBeneficiary",
		ConstructorBody:   `        beneficiary = escrowBeneficiary;`,
		Functions: `    function fund() external payable whenActive {
        require(!released, "escrow already released");
        require(msg.value > 0, "no funds attached");
        escrowBalance += msg.value;
        emit EscrowFunded(msg.sender, msg.value);
    }

    function release() external onlyOwner whenActive {
        require(!released, "escrow already released");
        require(escrowBalance > 0, "escrow is empty");
        released = true;
        uint256 amount = escrowBalance;
        escrowBalance = 0;
        (bool ok, ) = payable(beneficiary).call{value: amount}("");
        require(ok, "release transfer failed");
        emit EscrowReleased(beneficiary, amount);
    }

    function refund(address payable depositor) external onlyOwner whenActive {
        require(!released, "escrow already released");
        uint256 amount = escrowBalance;
        escrowBalance = 0;
        (bool ok, ) = depositor.call{value: amount}("");
        require(ok, "refund transfer failed");
        emit EscrowRefunded(depositor, amount);
    }`,
		ContextNote: "Funds are held by the contract until the owner releases to the beneficiary or refunds.",
	},
	"vesting": {
		State: `    uint256 public vestingStart;
    uint256 public vestingDuration = 365 days;
    uint256 public cliffDuration = 90 days;
    mapping(address => uint256) public granted;
    mapping(address => uint256) public claimed;`,
		Events: `    event TokensGranted(address indexed grantee, uint256 amount);
    event TokensClaimed(address indexed grantee, uint256 amount);`,
		ConstructorBody: `        vestingStart = block.timestamp;`,
		Functions: `    function grant(address grantee, uint256 amount) external onlyOwner whenActive {
        require(grantee != address(0), "zero grantee");
        granted[grantee] += amount;
        emit TokensGranted(grantee, amount);
    }

    function vestedAmount(address grantee) public view returns (uint256) {
        if (block.timestamp < vestingStart + cliffDuration) {
            return 0;
        }
        uint256 elapsed = block.timestamp - vestingStart;
        if (elapsed >= vestingDuration) {
            return granted[grantee];
        }
        return (granted[grantee] * elapsed) / vestingDuration;
    }

    function claim() external whenActive {
        uint256 claimable = vestedAmount(msg.sender) - claimed[msg.sender];
        require(claimable > 0, "nothing vested");
        claimed[msg.sender] += claimable;
        emit TokensClaimed(msg.sender, claimable);
    }`,
		ContextNote: "Linear vesting with a cliff; claims are pull-based.",
	},
	"supply-agreement": {
		State: `    struct PurchaseOrder {
        address buyer;
        uint256 quantity;
        uint256 unitPrice;
        bool fulfilled;
    }
    PurchaseOrder[] public orders;`,
		Events: `    event OrderPlaced(uint256 indexed orderId, address indexed buyer, uint256 quantity);
    event OrderFulfilled(uint256 indexed orderId);`,
		Functions: `    function placeOrder(uint256 quantity, uint256 unitPrice) external whenActive returns (uint256) {
        require(quantity > 0, "zero quantity");
        orders.push(PurchaseOrder(msg.sender, quantity, unitPrice, false));
        uint256 orderId = orders.length - 1;
        emit OrderPlaced(orderId, msg.sender, quantity);
        return orderId;
    }

    function fulfillOrder(uint256 orderId) external onlyOwner whenActive {
        require(orderId < orders.length, "unknown order");
        require(!orders[orderId].fulfilled, "order already fulfilled");
        orders[orderId].fulfilled = true;
        emit OrderFulfilled(orderId);
    }`,
		ContextNote: "Purchase orders are recorded on-chain and fulfilled by the supplier.",
	},
}
